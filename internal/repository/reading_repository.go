package repository

import (
	"context"

	"reading-club/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertReadingItem keeps a week's single reading item in sync with the
// current leader; one row per week, reference overwritten in place
func (r *Repository) UpsertReadingItem(ctx context.Context, item *models.ReadingItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "week_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"proposal_id": item.ProposalID,
			"reference":   item.Reference,
			"updated_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(item).Error
}

// GetReadingItemByWeek retrieves a week's reading item, or nil
func (r *Repository) GetReadingItemByWeek(ctx context.Context, weekID uuid.UUID) (*models.ReadingItem, error) {
	var item models.ReadingItem
	err := r.db.WithContext(ctx).Where("week_id = ?", weekID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetReadingItemByID retrieves a reading item by ID
func (r *Repository) GetReadingItemByID(ctx context.Context, itemID uuid.UUID) (*models.ReadingItem, error) {
	var item models.ReadingItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertReadMark records a user's read status for a reading item
func (r *Repository) UpsertReadMark(ctx context.Context, mark *models.ReadMark) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "reading_item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     mark.Status,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(mark).Error
}

// GetReadMarks retrieves all read marks on a reading item
func (r *Repository) GetReadMarks(ctx context.Context, itemID uuid.UUID) ([]*models.ReadMark, error) {
	var marks []*models.ReadMark
	err := r.db.WithContext(ctx).
		Where("reading_item_id = ?", itemID).
		Find(&marks).Error
	if err != nil {
		return nil, err
	}
	return marks, nil
}

// GetUserReadMark retrieves one user's mark on a reading item, or nil
func (r *Repository) GetUserReadMark(ctx context.Context, userID, itemID uuid.UUID) (*models.ReadMark, error) {
	var mark models.ReadMark
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND reading_item_id = ?", userID, itemID).
		First(&mark).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mark, nil
}

// CountReadMarks counts marks with a given status on a reading item
func (r *Repository) CountReadMarks(ctx context.Context, itemID uuid.UUID, status models.ReadStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReadMark{}).
		Where("reading_item_id = ? AND status = ?", itemID, status).
		Count(&count).Error
	return count, err
}

// GetAllReadReferences retrieves every reference that has ever landed on
// a reading item, across all groups. Seeding excludes these globally.
func (r *Repository) GetAllReadReferences(ctx context.Context) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Model(&models.ReadingItem{}).
		Distinct().
		Pluck("reference", &refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// GetGroupReadReferences retrieves the references of a group's resolved
// weeks; rerolls exclude these
func (r *Repository) GetGroupReadReferences(ctx context.Context, groupID uuid.UUID) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Model(&models.ReadingItem{}).
		Joins("JOIN weeks ON weeks.id = reading_items.week_id").
		Where("weeks.group_id = ? AND weeks.status = ?", groupID, models.WeekStatusResolved).
		Pluck("reading_items.reference", &refs).Error
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// GetUserReadHistory retrieves reading items a user marked READ, newest
// mark first
func (r *Repository) GetUserReadHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ReadingItem, error) {
	var items []*models.ReadingItem
	q := r.db.WithContext(ctx).Model(&models.ReadingItem{}).
		Joins("JOIN read_marks ON read_marks.reading_item_id = reading_items.id").
		Where("read_marks.user_id = ? AND read_marks.status = ?", userID, models.ReadStatusRead).
		Order("read_marks.updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
