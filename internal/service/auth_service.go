package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/repository"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
)

const (
	usernameTakenMessage = "Пользователь с таким логином уже существует"
	emailTakenMessage    = "Пользователь с таким email уже существует"
)

// dummyHash is compared against when the username is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOa6EKl8fJm0ZPGM6dBYHsZ5yr/sxBVRq")

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.UserProfile, error)
	FindByID(ctx context.Context, id string) (*models.UserProfile, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.UserProfile) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

// AuthConfig defines configuration for session tokens.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	Issuer        string
	BcryptCost    int
}

// AuthService provides registration and login use cases.
type AuthService struct {
	repo      authUserRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 7 * 24 * time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{repo: repo, metrics: metrics, validator: validate, logger: logger, config: config}
}

// Register validates the form and creates an account.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}

	conflicts := map[string]string{}
	taken, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, internalError(err, "failed to validate username")
	}
	if taken {
		conflicts["username"] = usernameTakenMessage
	}
	taken, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, internalError(err, "failed to validate email")
	}
	if taken {
		conflicts["email"] = emailTakenMessage
	}
	if len(conflicts) > 0 {
		conflict := appErrors.Clone(appErrors.ErrConflict, "account already exists")
		conflict.Fields = conflicts
		return nil, conflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}

	user := &models.UserProfile{Username: req.Username, Email: req.Email, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, user); err != nil {
		switch constraint, _ := repository.UniqueConstraint(err); constraint {
		case repository.ConstraintUserUsername:
			return nil, fieldConflict("username", usernameTakenMessage)
		case repository.ConstraintUserEmail:
			return nil, fieldConflict("email", emailTakenMessage)
		}
		return nil, internalError(err, "failed to create account")
	}

	s.metrics.RecordRegistration()
	s.logger.Info("account registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login authenticates a user and issues a signed session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			s.metrics.RecordLogin(false)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, internalError(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	now := time.Now().UTC()
	token, expiresAt, err := s.generateSessionToken(user, now)
	if err != nil {
		return nil, internalError(err, "failed to create session token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	s.metrics.RecordLogin(true)
	return &models.Session{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// ValidateSession parses and validates a session token returning the claims.
func (s *AuthService) ValidateSession(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}

// CurrentUser loads the account behind validated session claims.
func (s *AuthService) CurrentUser(ctx context.Context, claims *models.SessionClaims) (*models.UserProfile, error) {
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, internalError(err, "failed to load user")
	}
	return user, nil
}

// SessionTTL returns the configured lifetime of session tokens.
func (s *AuthService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}

func (s *AuthService) generateSessionToken(user *models.UserProfile, issuedAt time.Time) (string, time.Time, error) {
	expiresAt := issuedAt.Add(s.config.SessionTTL)
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SessionSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
