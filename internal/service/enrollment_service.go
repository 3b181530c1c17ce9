package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-courses/internal/models"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	CountActive(ctx context.Context, courseID string) (int, error)
	CreateWithCapacity(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, at time.Time) (*models.Enrollment, error)
}

type enrollmentStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type enrollmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// EnrollRequest enrolls a student into a course.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	CourseID  string `json:"course_id" validate:"required,uuid"`
}

// ChangeStatusRequest moves an enrollment to another status.
type ChangeStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" validate:"required,oneof=ACTIVE COMPLETED DROPPED"`
}

// EnrollmentService enforces course capacity and the enrollment lifecycle.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  enrollmentStudentReader
	courses   enrollmentCourseReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentReader, courses enrollmentCourseReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		students:  students,
		courses:   courses,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Enroll creates an ACTIVE enrollment. The seat check and the insert happen
// atomically in the repository.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, internalError(err, "failed to load course")
	}
	if !course.IsActive {
		return nil, appErrors.FieldError(appErrors.ErrValidation, "course_id", "Запись на этот курс закрыта")
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, CourseID: req.CourseID, EnrolledAt: s.now().UTC()}
	if err := s.repo.CreateWithCapacity(ctx, enrollment); err != nil {
		return nil, s.mapCapacityError(err)
	}

	s.metrics.RecordEnrollment(EnrollmentResultCreated)
	s.cache.InvalidateCourses(ctx)
	s.logger.Info("student enrolled",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("student_id", enrollment.StudentID),
		zap.String("course_id", enrollment.CourseID),
	)
	return enrollment, nil
}

// ChangeStatus moves the enrollment to the requested status.
func (s *EnrollmentService) ChangeStatus(ctx context.Context, id string, req ChangeStatusRequest) (*models.Enrollment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment status")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, req.Status, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		if errors.Is(err, appErrors.ErrCourseFull) {
			return nil, appErrors.Clone(appErrors.ErrCourseFull, "")
		}
		return nil, internalError(err, "failed to update enrollment")
	}

	s.cache.InvalidateCourses(ctx)
	s.logger.Info("enrollment status changed", zap.String("enrollment_id", id), zap.String("status", string(updated.Status)))
	return updated, nil
}

// Get returns an enrollment by ID.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.Enrollment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, internalError(err, "failed to load enrollment")
	}
	return enrollment, nil
}

// Availability reports the seats left in the course identified by ID.
func (s *EnrollmentService) Availability(ctx context.Context, courseID string) (*models.CourseAvailability, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, internalError(err, "failed to load course")
	}
	active, err := s.repo.CountActive(ctx, course.ID)
	if err != nil {
		return nil, internalError(err, "failed to count enrollments")
	}
	detail := models.CourseDetail{Course: *course, ActiveEnrollments: active}
	return &models.CourseAvailability{
		CourseID:          course.ID,
		Slug:              course.Slug,
		MaxStudents:       course.MaxStudents,
		ActiveEnrollments: active,
		AvailableSpots:    detail.AvailableSpots(),
	}, nil
}

func (s *EnrollmentService) mapCapacityError(err error) error {
	switch {
	case errors.Is(err, appErrors.ErrCourseFull):
		s.metrics.RecordEnrollment(EnrollmentResultFull)
		return appErrors.Clone(appErrors.ErrCourseFull, "")
	case errors.Is(err, appErrors.ErrDuplicateEnrollment):
		s.metrics.RecordEnrollment(EnrollmentResultDuplicate)
		return appErrors.Clone(appErrors.ErrDuplicateEnrollment, "")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	s.metrics.RecordEnrollment(EnrollmentResultError)
	return internalError(err, "failed to enroll student")
}
