package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-courses/internal/models"
)

type feedbackRepository interface {
	Create(ctx context.Context, msg *models.FeedbackMessage) error
	List(ctx context.Context, page, pageSize int) ([]models.FeedbackMessage, int, error)
}

// FeedbackRequest is submitted by the feedback form.
type FeedbackRequest struct {
	Name    string `form:"name" json:"name" validate:"required,min=2,max=100"`
	Email   string `form:"email" json:"email" validate:"required,email,max=254"`
	Subject string `form:"subject" json:"subject" validate:"required,max=200"`
	Message string `form:"message" json:"message" validate:"required,min=10,max=5000"`
}

// FeedbackService stores messages from the feedback form.
type FeedbackService struct {
	repo      feedbackRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackService constructs the service.
func NewFeedbackService(repo feedbackRepository, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, validator: validate, logger: logger}
}

// Submit validates and persists a feedback message. Length rules apply to the
// trimmed name and message.
func (s *FeedbackService) Submit(ctx context.Context, req FeedbackRequest) (*models.FeedbackMessage, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid feedback payload")
	}

	msg := &models.FeedbackMessage{Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, internalError(err, "failed to store feedback")
	}
	s.logger.Info("feedback received", zap.String("feedback_id", msg.ID), zap.String("subject", msg.Subject))
	return msg, nil
}

// List returns stored feedback, newest first.
func (s *FeedbackService) List(ctx context.Context, page, pageSize int) ([]models.FeedbackMessage, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, nil, internalError(err, "failed to list feedback")
	}
	return items, newPagination(page, pageSize, total), nil
}
