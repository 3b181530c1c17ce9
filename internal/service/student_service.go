package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/repository"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, student *models.Student) error
}

type studentEnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FirstName string         `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName  string         `json:"last_name" form:"last_name" validate:"required,max=100"`
	Email     string         `json:"email" form:"email" validate:"required,email,max=254"`
	BirthDate string         `json:"birth_date" form:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Faculty   models.Faculty `json:"faculty" form:"faculty" validate:"omitempty,oneof=CS SE IT DS WEB"`
}

// StudentProfile is a student together with their enrollments.
type StudentProfile struct {
	Student     models.Student            `json:"student"`
	Enrollments []models.EnrollmentDetail `json:"enrollments"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo        studentRepository
	enrollments studentEnrollmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, enrollments studentEnrollmentReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Faculty != "" && !filter.Faculty.Valid() {
		filter.Faculty = ""
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	return students, newPagination(filter.Page, filter.PageSize, total), nil
}

// Count returns the total number of students.
func (s *StudentService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, internalError(err, "failed to count students")
	}
	return total, nil
}

// Get returns a student by ID. Malformed IDs are reported as not found.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// Profile returns a student with every enrollment.
func (s *StudentService) Profile(ctx context.Context, id string) (*StudentProfile, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, internalError(err, "failed to load student enrollments")
	}
	return &StudentProfile{Student: *student, Enrollments: enrollments}, nil
}

// FindByEmail returns the student registered with email.
func (s *StudentService) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	student, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.BirthDate = strings.TrimSpace(req.BirthDate)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, internalError(err, "failed to validate email")
	}
	if exists {
		return nil, fieldConflict("email", "Студент с таким email уже существует")
	}

	student := &models.Student{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Faculty:   req.Faculty,
	}
	if student.Faculty == "" {
		student.Faculty = models.FacultyCyberSecurity
	}
	if req.BirthDate != "" {
		birth, _ := time.Parse("2006-01-02", req.BirthDate)
		student.BirthDate = &birth
	}

	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err, repository.ConstraintStudentEmail) {
			return nil, fieldConflict("email", "Студент с таким email уже существует")
		}
		return nil, internalError(err, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

func newPagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
