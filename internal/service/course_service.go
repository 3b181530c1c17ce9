package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/repository"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
	"github.com/noah-isme/fefu-courses/pkg/slug"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindDetailBySlug(ctx context.Context, slug string) (*models.CourseDetail, error)
	FindBySlug(ctx context.Context, slug string) (*models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByTitle(ctx context.Context, title, excludeID string) (bool, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
}

type courseInstructorReader interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type courseEnrollmentReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

// CourseRequest is the payload for creating or replacing a course. Optional
// numeric fields fall back to their defaults when omitted.
type CourseRequest struct {
	Title        string             `json:"title" validate:"required,max=200"`
	Slug         string             `json:"slug" validate:"required,max=200,slug"`
	Description  string             `json:"description"`
	Duration     int                `json:"duration" validate:"required,min=1,max=500"`
	InstructorID string             `json:"instructor_id" validate:"omitempty,uuid"`
	Level        models.CourseLevel `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	MaxStudents  *int               `json:"max_students" validate:"omitempty,min=1"`
	Price        *float64           `json:"price" validate:"omitempty,gte=0"`
	IsActive     *bool              `json:"is_active"`
}

// CourseView is a course detail together with its roster.
type CourseView struct {
	Course      models.CourseDetail       `json:"course"`
	Enrollments []models.EnrollmentDetail `json:"enrollments"`
}

type cachedCourseList struct {
	Items []models.CourseDetail `json:"items"`
	Total int                   `json:"total"`
}

// CourseService contains course catalogue use-cases.
type CourseService struct {
	repo        courseRepository
	instructors courseInstructorReader
	enrollments courseEnrollmentReader
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, instructors courseInstructorReader, enrollments courseEnrollmentReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, instructors: instructors, enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

// List returns courses matching filter, served from cache when possible.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Level != "" && !filter.Level.Valid() {
		filter.Level = ""
	}
	pagination := newPagination(filter.Page, filter.PageSize, 0)
	filter.Page, filter.PageSize = pagination.Page, pagination.PageSize

	key := courseListKey(filter)
	var cached cachedCourseList
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		pagination.TotalCount = cached.Total
		return cached.Items, pagination, nil
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list courses")
	}
	_ = s.cache.Set(ctx, key, cachedCourseList{Items: courses, Total: total}, 0)

	pagination.TotalCount = total
	return courses, pagination, nil
}

// GetBySlug returns the course detail for slug.
func (s *CourseService) GetBySlug(ctx context.Context, courseSlug string) (*models.CourseDetail, error) {
	if !slug.Valid(courseSlug) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	key := courseDetailKey(courseSlug)
	var cached models.CourseDetail
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	detail, err := s.repo.FindDetailBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, internalError(err, "failed to load course")
	}
	_ = s.cache.Set(ctx, key, detail, 0)
	return detail, nil
}

// View returns the course detail with its enrollments.
func (s *CourseService) View(ctx context.Context, courseSlug string) (*CourseView, error) {
	detail, err := s.GetBySlug(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByCourse(ctx, detail.ID)
	if err != nil {
		return nil, internalError(err, "failed to load course enrollments")
	}
	return &CourseView{Course: *detail, Enrollments: enrollments}, nil
}

// Availability reports the seats left in a course.
func (s *CourseService) Availability(ctx context.Context, courseSlug string) (*models.CourseAvailability, error) {
	detail, err := s.GetBySlug(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	return &models.CourseAvailability{
		CourseID:          detail.ID,
		Slug:              detail.Slug,
		MaxStudents:       detail.MaxStudents,
		ActiveEnrollments: detail.ActiveEnrollments,
		AvailableSpots:    detail.AvailableSpots(),
	}, nil
}

// Create validates and stores a new course. A missing slug is derived from the title.
func (s *CourseService) Create(ctx context.Context, req CourseRequest) (*models.Course, error) {
	course := &models.Course{IsActive: true}
	if err := s.apply(ctx, course, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, s.mapWriteError(err, "failed to create course")
	}
	s.cache.InvalidateCourses(ctx)
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("slug", course.Slug))
	return course, nil
}

// Update replaces the editable attributes of the course identified by slug.
func (s *CourseService) Update(ctx context.Context, courseSlug string, req CourseRequest) (*models.Course, error) {
	course, err := s.repo.FindBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, internalError(err, "failed to load course")
	}
	if err := s.apply(ctx, course, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, s.mapWriteError(err, "failed to update course")
	}
	s.cache.InvalidateCourses(ctx)
	return course, nil
}

func (s *CourseService) apply(ctx context.Context, course *models.Course, req CourseRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" {
		req.Slug = slug.Make(req.Title)
	}
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid course payload")
	}

	exists, err := s.repo.ExistsByTitle(ctx, req.Title, course.ID)
	if err != nil {
		return internalError(err, "failed to validate course title")
	}
	if exists {
		return fieldConflict("title", "Курс с таким названием уже существует")
	}
	exists, err = s.repo.ExistsBySlug(ctx, req.Slug, course.ID)
	if err != nil {
		return internalError(err, "failed to validate course slug")
	}
	if exists {
		return fieldConflict("slug", "Курс с таким URL уже существует")
	}

	course.InstructorID = nil
	if req.InstructorID != "" {
		if _, err := s.instructors.FindByID(ctx, req.InstructorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.FieldError(appErrors.ErrValidation, "instructor_id", "Преподаватель не найден")
			}
			return internalError(err, "failed to load instructor")
		}
		instructorID := req.InstructorID
		course.InstructorID = &instructorID
	}

	course.Title = req.Title
	course.Slug = req.Slug
	course.Description = strings.TrimSpace(req.Description)
	course.Duration = req.Duration
	course.Level = req.Level
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}
	course.MaxStudents = models.DefaultMaxStudents
	if req.MaxStudents != nil {
		course.MaxStudents = *req.MaxStudents
	}
	course.Price = 0
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	return nil
}

func (s *CourseService) mapWriteError(err error, message string) error {
	switch constraint, _ := repository.UniqueConstraint(err); constraint {
	case repository.ConstraintCourseTitle:
		return fieldConflict("title", "Курс с таким названием уже существует")
	case repository.ConstraintCourseSlug:
		return fieldConflict("slug", "Курс с таким URL уже существует")
	}
	return internalError(err, message)
}
