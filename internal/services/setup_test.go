package services

import (
	"fmt"
	"testing"
	"time"

	"reading-club/internal/models"
	"reading-club/internal/repository"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Invite{},
		&models.Week{},
		&models.Proposal{},
		&models.Vote{},
		&models.ReadingItem{},
		&models.ReadMark{},
		&models.Comment{},
		&models.ProposalComment{},
		&models.ProposalCommentRead{},
		&models.Annotation{},
		&models.AnnotationReply{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

// testMonday is a Monday morning; week boundaries in the tests are
// computed from it.
var testMonday = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

// newTestWeekService builds a WeekService with a controllable clock and a
// pinned randomness source (0.75).
func newTestWeekService(db *gorm.DB) (*WeekService, *time.Time) {
	clock := testMonday
	svc := NewWeekService(repository.NewRepository(db)).
		WithClock(func() time.Time { return clock }).
		WithRand(func() float64 { return 0.75 })
	return svc, &clock
}

// seedGroup inserts a group with n members. The first user is the OWNER.
func seedGroup(t *testing.T, db *gorm.DB, n int, policy models.TiePolicy) (*models.Group, []*models.User) {
	t.Helper()

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			ID:              uuid.New(),
			Name:            fmt.Sprintf("Reader %d", i+1),
			Email:           fmt.Sprintf("reader%d@example.com", i+1),
			DefaultLanguage: "en",
		}
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		users = append(users, user)
	}

	group := &models.Group{
		ID:                  uuid.New(),
		Name:                "Test Circle",
		Timezone:            "UTC",
		OwnerID:             users[0].ID,
		TiePolicy:           policy,
		LiveTally:           true,
		VotingDurationHours: 68,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	for i, user := range users {
		role := models.GroupRoleMember
		if i == 0 {
			role = models.GroupRoleOwner
		}
		member := &models.GroupMember{
			ID:      uuid.New(),
			GroupID: group.ID,
			UserID:  user.ID,
			Role:    role,
		}
		if err := db.Create(member).Error; err != nil {
			t.Fatalf("failed to create member: %v", err)
		}
	}
	return group, users
}

func weekProposals(t *testing.T, db *gorm.DB, weekID uuid.UUID) []*models.Proposal {
	t.Helper()
	var proposals []*models.Proposal
	if err := db.Where("week_id = ?", weekID).Order("created_at ASC").Find(&proposals).Error; err != nil {
		t.Fatalf("failed to load proposals: %v", err)
	}
	return proposals
}

func countNotifications(t *testing.T, db *gorm.DB, typ models.NotificationType) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Notification{}).Where("type = ?", typ).Count(&count).Error; err != nil {
		t.Fatalf("failed to count notifications: %v", err)
	}
	return count
}
