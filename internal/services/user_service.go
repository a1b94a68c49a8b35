package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/storage"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const (
	maxHandleLength      = 50
	maxDisplayNameLength = 100
	maxBioLength         = 500
)

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	ExternalID  string
	Handle      string
	DisplayName string
	AvatarURL   string
}

type Profile struct {
	models.User
	Followers   int64 `json:"followers"`
	Following   int64 `json:"following"`
	IsFollowing bool  `json:"is_following"`
}

type UserService struct {
	db     *gorm.DB
	social *SocialService
	files  storage.Remover
}

func NewUserService(db *gorm.DB, social *SocialService, files storage.Remover) *UserService {
	if files == nil {
		files = storage.Noop{}
	}
	return &UserService{db: db, social: social, files: files}
}

// Sync creates the local user for an identity on first sight. Existing users
// keep their profile; only the handle is claimed once.
func (s *UserService) Sync(ctx context.Context, id Identity) (*models.User, error) {
	if id.ExternalID == "" {
		return nil, invalid("identity has no subject")
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "external_id = ?", id.ExternalID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	handle, err := s.freeHandle(ctx, id)
	if err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(id.DisplayName)
	if displayName == "" {
		displayName = handle
	}
	user = models.User{
		ID:          uuid.NewString(),
		ExternalID:  id.ExternalID,
		Handle:      handle,
		DisplayName: displayName,
		AvatarURL:   id.AvatarURL,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// lost a race with a concurrent sync of the same identity
		if s.db.WithContext(ctx).First(&user, "external_id = ?", id.ExternalID).Error == nil {
			return &user, nil
		}
		return nil, err
	}
	return &user, nil
}

// freeHandle normalizes the requested handle and makes it unique.
func (s *UserService) freeHandle(ctx context.Context, id Identity) (string, error) {
	base := slug.Make(id.Handle)
	if base == "" {
		base = slug.Make(id.DisplayName)
	}
	if base == "" {
		base = "player"
	}
	if len(base) > maxHandleLength-7 {
		base = base[:maxHandleLength-7]
	}

	candidate := base
	for i := 0; i < 5; i++ {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("handle = ?", candidate).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:6]
	}
	return "", conflict("could not allocate a handle")
}

func (s *UserService) ByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "external_id = ?", externalID).Error; err != nil {
		return nil, categorize(err)
	}
	return &user, nil
}

func (s *UserService) ByHandle(ctx context.Context, handle, viewerID string) (*Profile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "handle = ?", strings.ToLower(handle)).Error; err != nil {
		return nil, categorize(err)
	}
	counts, err := s.social.FollowCounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.social.IsFollowing(ctx, viewerID, user.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Followers: counts.Followers, Following: counts.Following, IsFollowing: following}, nil
}

// UpdateProfile applies a patch. Replaced avatar and banner files are removed
// from storage once the update is saved.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*models.User, error) {
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLength {
			return nil, invalid("display name must be 1 to %d characters", maxDisplayNameLength)
		}
		req.DisplayName = &name
	}
	if req.Bio != nil && utf8.RuneCountInString(*req.Bio) > maxBioLength {
		return nil, invalid("bio exceeds %d characters", maxBioLength)
	}

	var user models.User
	var replaced []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		if req.DisplayName != nil {
			user.DisplayName = *req.DisplayName
		}
		if req.Bio != nil {
			user.Bio = *req.Bio
		}
		if req.AvatarURL != nil && *req.AvatarURL != user.AvatarURL {
			if user.AvatarURL != "" {
				replaced = append(replaced, user.AvatarURL)
			}
			user.AvatarURL = *req.AvatarURL
		}
		if req.BannerURL != nil && *req.BannerURL != user.BannerURL {
			if user.BannerURL != "" {
				replaced = append(replaced, user.BannerURL)
			}
			user.BannerURL = *req.BannerURL
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, categorize(err)
	}

	if len(replaced) > 0 {
		s.files.DeleteURLs(ctx, replaced...)
	}
	return &user, nil
}
