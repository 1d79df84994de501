package repository

import (
	"context"
	"time"

	"reading-club/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateWeek inserts a new week. A concurrent insert for the same group
// trips the one-active-week unique index and surfaces gorm.ErrDuplicatedKey.
func (r *Repository) CreateWeek(ctx context.Context, week *models.Week) error {
	return r.db.WithContext(ctx).Create(week).Error
}

// GetActiveWeek retrieves the group's current non-resolved week, or nil
func (r *Repository) GetActiveWeek(ctx context.Context, groupID uuid.UUID) (*models.Week, error) {
	var week models.Week
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND status <> ?", groupID, models.WeekStatusResolved).
		Order("created_at DESC").
		First(&week).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &week, nil
}

// GetLatestWeek retrieves the group's most recent week of any status, or nil
func (r *Repository) GetLatestWeek(ctx context.Context, groupID uuid.UUID) (*models.Week, error) {
	var week models.Week
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		First(&week).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &week, nil
}

// GetWeekByID retrieves a week by ID
func (r *Repository) GetWeekByID(ctx context.Context, weekID uuid.UUID) (*models.Week, error) {
	var week models.Week
	err := r.db.WithContext(ctx).Where("id = ?", weekID).First(&week).Error
	if err != nil {
		return nil, err
	}
	return &week, nil
}

// GetWeekForUpdate retrieves a week under a row lock. SQLite has no
// SELECT FOR UPDATE; its single-writer transactions give the same guarantee.
func (r *Repository) GetWeekForUpdate(ctx context.Context, weekID uuid.UUID) (*models.Week, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var week models.Week
	err := q.Where("id = ?", weekID).First(&week).Error
	if err != nil {
		return nil, err
	}
	return &week, nil
}

// MarkWeekResolved flips a week to RESOLVED and records its reading item,
// but only if no concurrent resolution got there first. Returns whether
// this call won.
func (r *Repository) MarkWeekResolved(ctx context.Context, weekID, readingItemID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Week{}).
		Where("id = ? AND resolved_reading_id IS NULL", weekID).
		Updates(map[string]interface{}{
			"status":              models.WeekStatusResolved,
			"resolved_reading_id": readingItemID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateWeekStatus sets a week's status
func (r *Repository) UpdateWeekStatus(ctx context.Context, weekID uuid.UUID, status models.WeekStatus) error {
	return r.db.WithContext(ctx).Model(&models.Week{}).
		Where("id = ?", weekID).
		Update("status", status).Error
}

// MarkReminderSent stamps the reminder time exactly once per week.
// Returns whether this call did the stamping.
func (r *Repository) MarkReminderSent(ctx context.Context, weekID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Week{}).
		Where("id = ? AND reminder_sent_at IS NULL", weekID).
		Update("reminder_sent_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetResolvedWeeks retrieves a group's resolved weeks, newest first
func (r *Repository) GetResolvedWeeks(ctx context.Context, groupID uuid.UUID, limit int) ([]*models.Week, error) {
	var weeks []*models.Week
	q := r.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, models.WeekStatusResolved).
		Order("start_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&weeks).Error
	if err != nil {
		return nil, err
	}
	return weeks, nil
}
