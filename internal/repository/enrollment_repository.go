package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fefu-courses/internal/models"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
)

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.course_id, e.status, e.enrolled_at, e.completed_at,
        s.first_name AS student_first_name, s.last_name AS student_last_name, c.title AS course_title, c.slug AS course_slug
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository manages student enrollments into courses.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByStudent returns every enrollment of a student, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var items []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &items, enrollmentDetailSelect+" WHERE e.student_id = $1 ORDER BY e.enrolled_at DESC", studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return items, nil
}

// ListByCourse returns every enrollment of a course ordered by student name.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	var items []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &items, enrollmentDetailSelect+" WHERE e.course_id = $1 ORDER BY s.last_name ASC, s.first_name ASC", courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return items, nil
}

// FindByID returns an enrollment by ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	const query = `SELECT id, student_id, course_id, status, enrolled_at, completed_at FROM enrollments WHERE id = $1`
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CountActive returns the number of ACTIVE enrollments of a course.
func (r *EnrollmentRepository) CountActive(ctx context.Context, courseID string) (int, error) {
	count, err := countActive(ctx, r.db, courseID)
	if err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

// CreateWithCapacity inserts an ACTIVE enrollment while holding a row lock on
// the course, so concurrent enrollers of the same course are serialized and
// the active count can never exceed max_students.
func (r *EnrollmentRepository) CreateWithCapacity(ctx context.Context, enrollment *models.Enrollment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	maxStudents, err := lockCourse(ctx, tx, enrollment.CourseID)
	if err != nil {
		return err
	}

	var exists int
	err = tx.GetContext(ctx, &exists, "SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2", enrollment.StudentID, enrollment.CourseID)
	switch {
	case err == nil:
		err = appErrors.ErrDuplicateEnrollment
		return err
	case err != sql.ErrNoRows:
		return fmt.Errorf("check existing enrollment: %w", err)
	}

	active, err := countActive(ctx, tx, enrollment.CourseID)
	if err != nil {
		return fmt.Errorf("count active enrollments: %w", err)
	}
	if active >= maxStudents {
		err = appErrors.ErrCourseFull
		return err
	}

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	enrollment.Status = models.EnrollmentStatusActive
	enrollment.CompletedAt = nil

	const insertQuery = `INSERT INTO enrollments (id, student_id, course_id, status, enrolled_at, completed_at)
        VALUES (:id, :student_id, :course_id, :status, :enrolled_at, :completed_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, enrollment); err != nil {
		if IsUniqueViolation(err, ConstraintEnrollmentPairKey) {
			err = appErrors.ErrDuplicateEnrollment
			return err
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// UpdateStatus moves an enrollment to status. completed_at is stamped with at
// for COMPLETED and cleared otherwise. Re-activating an enrollment performs
// the same locked capacity check as CreateWithCapacity.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, at time.Time) (updated *models.Enrollment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enrollment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.Enrollment
	const selectQuery = `SELECT id, student_id, course_id, status, enrolled_at, completed_at FROM enrollments WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &current, selectQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock enrollment: %w", err)
	}

	if status == models.EnrollmentStatusActive && current.Status != models.EnrollmentStatusActive {
		var maxStudents, active int
		if maxStudents, err = lockCourse(ctx, tx, current.CourseID); err != nil {
			return nil, err
		}
		if active, err = countActive(ctx, tx, current.CourseID); err != nil {
			return nil, fmt.Errorf("count active enrollments: %w", err)
		}
		if active >= maxStudents {
			err = appErrors.ErrCourseFull
			return nil, err
		}
	}

	current.Status = status
	if status == models.EnrollmentStatusCompleted {
		completed := at.UTC()
		current.CompletedAt = &completed
	} else {
		current.CompletedAt = nil
	}

	const updateQuery = `UPDATE enrollments SET status = $1, completed_at = $2 WHERE id = $3`
	if _, err = tx.ExecContext(ctx, updateQuery, current.Status, current.CompletedAt, current.ID); err != nil {
		return nil, fmt.Errorf("update enrollment status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit enrollment status: %w", err)
	}
	return &current, nil
}

func lockCourse(ctx context.Context, tx *sqlx.Tx, courseID string) (int, error) {
	var maxStudents int
	if err := tx.GetContext(ctx, &maxStudents, "SELECT max_students FROM courses WHERE id = $1 FOR UPDATE", courseID); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("lock course: %w", err)
	}
	return maxStudents, nil
}

func countActive(ctx context.Context, q sqlx.QueryerContext, courseID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, "SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2", courseID, models.EnrollmentStatusActive)
	return count, err
}
