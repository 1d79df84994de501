package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reading-club/internal/models"
	"reading-club/internal/repository"

	"github.com/google/uuid"
)

const (
	maxUserNameLength  = 60
	maxAvatarImageSize = 150000
	notificationsLimit = 30
	readHistoryLimit   = 50
)

var avatarPresets = map[string]struct{}{
	"cross": {}, "dove": {}, "fish": {}, "olive": {},
	"lamp": {}, "hands": {}, "scroll": {}, "star": {},
}

// UserService covers profiles, login, and per-user feeds.
type UserService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// LoginOrRegister finds a user by email, creating one on first login.
// The display name defaults to the email's local part.
func (s *UserService) LoginOrRegister(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	name := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		name = email[:i]
	}
	if len(name) > maxUserNameLength {
		name = name[:maxUserNameLength]
	}
	user = &models.User{
		ID:              uuid.New(),
		Name:            name,
		Email:           email,
		DefaultLanguage: "en",
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetProfile returns a user.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// UpdateProfile applies profile edits. Avatar preset and uploaded image
// are mutually exclusive: setting one clears the other.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, unprocessable("name is required")
		}
		if len(name) > maxUserNameLength {
			return nil, unprocessable(fmt.Sprintf("name exceeds %d characters", maxUserNameLength))
		}
		user.Name = name
	}
	if req.AvatarPreset != nil {
		if _, ok := avatarPresets[*req.AvatarPreset]; !ok {
			return nil, unprocessable("unknown avatar preset")
		}
		user.AvatarPreset = req.AvatarPreset
		user.AvatarImage = nil
	}
	if req.AvatarImage != nil {
		img := *req.AvatarImage
		if !strings.HasPrefix(img, "data:image/") {
			return nil, unprocessable("avatar image must be a data:image/ URL")
		}
		if len(img) > maxAvatarImageSize {
			return nil, unprocessable("avatar image is too large")
		}
		user.AvatarImage = &img
		user.AvatarPreset = nil
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// GetNotifications returns the caller's latest notifications with the
// unread count.
func (s *UserService) GetNotifications(ctx context.Context, userID uuid.UUID) ([]*models.Notification, int64, error) {
	notifications, err := s.repo.GetUserNotifications(ctx, userID, notificationsLimit)
	if err != nil {
		return nil, 0, fmt.Errorf("load notifications: %w", err)
	}
	unread, err := s.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count unread: %w", err)
	}
	return notifications, unread, nil
}

// MarkNotificationsRead stamps the given notifications, or all of the
// caller's unread ones when ids is empty.
func (s *UserService) MarkNotificationsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return s.repo.MarkAllNotificationsRead(ctx, userID, s.now())
	}
	return s.repo.MarkNotificationsRead(ctx, userID, ids, s.now())
}

// GetReadHistory returns the passages the caller has marked READ,
// most recent first.
func (s *UserService) GetReadHistory(ctx context.Context, userID uuid.UUID) ([]*models.ReadingItem, error) {
	return s.repo.GetUserReadHistory(ctx, userID, readHistoryLimit)
}

// GetCommentHistory returns the caller's recent comments.
func (s *UserService) GetCommentHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Comment, error) {
	if limit <= 0 || limit > readHistoryLimit {
		limit = readHistoryLimit
	}
	return s.repo.GetUserComments(ctx, userID, limit)
}
