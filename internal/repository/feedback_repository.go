package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fefu-courses/internal/models"
)

// FeedbackRepository stores messages submitted through the feedback form.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create persists a feedback message.
func (r *FeedbackRepository) Create(ctx context.Context, msg *models.FeedbackMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO feedback_messages (id, name, email, subject, message, created_at)
        VALUES (:id, :name, :email, :subject, :message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// List returns feedback messages, newest first.
func (r *FeedbackRepository) List(ctx context.Context, page, pageSize int) ([]models.FeedbackMessage, int, error) {
	_, size, offset := pageBounds(page, pageSize)
	query := fmt.Sprintf("SELECT id, name, email, subject, message, created_at FROM feedback_messages ORDER BY created_at DESC LIMIT %d OFFSET %d", size, offset)

	var items []models.FeedbackMessage
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM feedback_messages"); err != nil {
		return nil, 0, fmt.Errorf("count feedback: %w", err)
	}
	return items, total, nil
}
