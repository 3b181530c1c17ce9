package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/repository"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
)

type instructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	SetActive(ctx context.Context, id string, active bool) error
}

// CreateInstructorRequest contains instructor creation payload.
type CreateInstructorRequest struct {
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Specialization string `json:"specialization" validate:"max=200"`
	Degree         string `json:"degree" validate:"max=100"`
}

// InstructorService contains business logic for instructors.
type InstructorService struct {
	repo      instructorRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorService constructs a new service.
func NewInstructorService(repo instructorRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns instructors with pagination.
func (s *InstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, *models.Pagination, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	instructors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list instructors")
	}
	return instructors, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an instructor by ID.
func (s *InstructorService) Get(ctx context.Context, id string) (*models.Instructor, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, internalError(err, "failed to load instructor")
	}
	return instructor, nil
}

// Create validates and stores a new instructor. New instructors are active.
func (s *InstructorService) Create(ctx context.Context, req CreateInstructorRequest) (*models.Instructor, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid instructor payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, internalError(err, "failed to validate instructor email")
	}
	if exists {
		return nil, fieldConflict("email", "Преподаватель с таким email уже существует")
	}

	instructor := &models.Instructor{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Specialization: strings.TrimSpace(req.Specialization),
		Degree:         strings.TrimSpace(req.Degree),
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintInstructorEmail) {
			return nil, fieldConflict("email", "Преподаватель с таким email уже существует")
		}
		return nil, internalError(err, "failed to create instructor")
	}
	return instructor, nil
}

// SetActive toggles whether the instructor is active. Course listings embed
// instructor data, so the course cache is dropped.
func (s *InstructorService) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return internalError(err, "failed to update instructor")
	}
	s.cache.InvalidateCourses(ctx)
	return nil
}
