package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fefu-courses/internal/models"
)

const userColumns = "id, username, email, password_hash, last_login, created_at"

// UserRepository handles persistence of site accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns the account by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := r.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM user_profiles WHERE username = $1", username); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns the account by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := r.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM user_profiles WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername checks whether the username is taken.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM user_profiles WHERE username = $1 LIMIT 1", username)
}

// ExistsByEmail checks whether the email is taken. The comparison ignores case.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM user_profiles WHERE LOWER(email) = LOWER($1) LIMIT 1", email)
}

func (r *UserRepository) exists(ctx context.Context, query, value string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, value); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check user: %w", err)
	}
	return true, nil
}

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, user *models.UserProfile) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO user_profiles (id, username, email, password_hash, last_login, created_at)
        VALUES (:id, :username, :email, :password_hash, :last_login, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the last login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE user_profiles SET last_login = $1 WHERE id = $2", at, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
