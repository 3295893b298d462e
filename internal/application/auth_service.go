package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	repo "github.com/oksasatya/fitness-app-api/internal/domain/repository"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
	tpl "github.com/oksasatya/fitness-app-api/pkg/mailer/templates"
)

// DefaultRole is assigned to every self-registered account.
const DefaultRole = entity.RoleUser

// AuthService verifies credentials and issues tokens.
type AuthService struct {
	Users    repo.UserRepository
	JWT      *helpers.JWTManager
	Hasher   helpers.PasswordHasher
	Index    UserIndexer
	Notifier *Notifier
	Logger   *logrus.Logger

	// digest compared against on unknown emails so both failure paths cost one bcrypt check
	dummyHash string
}

// AuthResult is what a successful login or registration hands back.
type AuthResult struct {
	User      *entity.User
	Roles     []string
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, hasher helpers.PasswordHasher, index UserIndexer, notifier *Notifier, logger *logrus.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash("fitness-app-placeholder-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &AuthService{
		Users:     users,
		JWT:       jwt,
		Hasher:    hasher,
		Index:     index,
		Notifier:  notifier,
		Logger:    logger,
		dummyHash: dummy,
	}, nil
}

// NormalizeEmail is applied to every email before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultAvatarURL returns the generated avatar for a new account.
func DefaultAvatarURL(email string) string {
	return "https://i.pravatar.cc/150?u=" + url.QueryEscape(email)
}

// Login verifies email/password. Unknown email and wrong password are
// reported identically as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithError(err).Error("lookup user for login failed")
		}
		s.Hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !s.Hasher.Verify(password, u.Password) {
		return nil, ErrInvalidCredentials
	}

	roles := u.RoleStrings()
	token, exp, err := s.JWT.Issue(u.ID, u.Name, roles)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.Logger.WithField("user_id", u.ID).Info("user logged in")
	return &AuthResult{User: u, Roles: roles, Token: token, ExpiresAt: exp}, nil
}

// Register creates an account with the default role and then logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)
	exists, err := s.Users.ExistsByEmail(ctx, email)
	if err != nil {
		s.Logger.WithError(err).Error("check email failed")
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	if exists {
		return nil, ErrEmailInUse
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", ErrRegistrationFailed, err)
	}
	u := &entity.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Password:  hash,
		AvatarURL: DefaultAvatarURL(email),
		Roles:     []entity.RoleName{DefaultRole},
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// lost a concurrent race for the same email
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrEmailInUse
		}
		s.Logger.WithError(err).Error("create user failed")
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")

	if s.Index != nil {
		if err := s.Index.Index(ctx, u); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index user failed")
		}
	}
	s.Notifier.Send(ctx, tpl.Welcome, u, tpl.WithTime(time.Now()))

	// TODO: drop the implicit login if product decides registration should not start a session.
	return s.Login(ctx, email, in.Password)
}
