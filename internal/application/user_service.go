package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	repo "github.com/oksasatya/fitness-app-api/internal/domain/repository"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
	tpl "github.com/oksasatya/fitness-app-api/pkg/mailer/templates"
)

const profileCacheTTL = 10 * time.Minute

// Profile is the public view of a user.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func ProfileOf(u *entity.User) Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.AvatarURL}
}

type UserService struct {
	Repo     repo.UserRepository
	Redis    *redis.Client
	Avatars  AvatarStore
	Index    UserIndexer
	Notifier *Notifier
	Logger   *logrus.Logger
}

func NewUserService(repo repo.UserRepository, rdb *redis.Client, avatars AvatarStore, index UserIndexer, notifier *Notifier, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &UserService{
		Repo:     repo,
		Redis:    rdb,
		Avatars:  avatars,
		Index:    index,
		Notifier: notifier,
		Logger:   logger,
	}
}

func profileKey(userID string) string {
	return "user:profile:" + userID
}

func (s *UserService) load(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// GetCurrentUser returns the profile of the authenticated user, served from
// the redis cache when present.
func (s *UserService) GetCurrentUser(ctx context.Context, userID string) (Profile, error) {
	if s.Redis != nil {
		var cached Profile
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileKey(userID), &cached)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("profile cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	p := ProfileOf(u)
	s.fillCache(ctx, p)
	return p, nil
}

// fillCache caches a profile read from the database. It never overwrites an
// existing entry: save may have stored a newer profile since this one was loaded.
func (s *UserService) fillCache(ctx context.Context, p Profile) {
	if s.Redis == nil {
		return
	}
	if _, err := helpers.RedisSetJSONNX(ctx, s.Redis, profileKey(p.ID), p, profileCacheTTL); err != nil {
		s.Logger.WithError(err).WithField("user_id", p.ID).Warn("profile cache write failed")
	}
}

// UpdateProfileInput holds optional profile changes; nil fields are left untouched.
type UpdateProfileInput struct {
	Name *string
}

// UpdateProfile applies in to the user. Email and avatar are never changed here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (Profile, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	changes := map[string]string{}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" && name != u.Name {
			u.Name = name
			changes["name"] = name
		}
	}
	if len(changes) == 0 {
		return ProfileOf(u), nil
	}
	if err := s.save(ctx, u); err != nil {
		return Profile{}, err
	}
	s.Notifier.Send(ctx, tpl.ProfileUpdated, u, tpl.WithTime(time.Now()), tpl.WithChanges(changes))
	return ProfileOf(u), nil
}

// UploadAvatar stores a new avatar image and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (Profile, error) {
	if s.Avatars == nil {
		return Profile{}, ErrStorageDisabled
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := s.Avatars.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("avatar upload failed")
		return Profile{}, fmt.Errorf("upload avatar: %w", err)
	}
	u.AvatarURL = url
	if err := s.save(ctx, u); err != nil {
		return Profile{}, err
	}
	return ProfileOf(u), nil
}

// SearchUsers queries the user index; without an index it returns no hits.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Index.Search(ctx, q, size)
}

func (s *UserService) save(ctx context.Context, u *entity.User) error {
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update user: %w", err)
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileKey(u.ID), ProfileOf(u), profileCacheTTL); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("profile cache refresh failed; evicting")
			_ = helpers.RedisDel(ctx, s.Redis, profileKey(u.ID))
		}
	}
	if s.Index != nil {
		if err := s.Index.Index(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index user failed")
		}
	}
	return nil
}
