package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fefu-courses/internal/models"
)

const instructorColumns = "id, first_name, last_name, email, specialization, degree, is_active, created_at"

// InstructorRepository handles persistence for instructors.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository creates a new repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns instructors using filters.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(specialization) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")
	_, size, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM instructors WHERE %s ORDER BY last_name ASC, first_name ASC LIMIT %d OFFSET %d", instructorColumns, where, size, offset)
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list instructors: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM instructors WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count instructors: %w", err)
	}
	return instructors, total, nil
}

// FindByID returns instructor by ID.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, "SELECT "+instructorColumns+" FROM instructors WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// ExistsByEmail checks email uniqueness.
func (r *InstructorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM instructors WHERE email = $1 LIMIT 1", email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check instructor email: %w", err)
	}
	return true, nil
}

// Create inserts a new instructor.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	if instructor.CreatedAt.IsZero() {
		instructor.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO instructors (id, first_name, last_name, email, specialization, degree, is_active, created_at)
        VALUES (:id, :first_name, :last_name, :email, :specialization, :degree, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// SetActive toggles the active flag. It returns sql.ErrNoRows when the
// instructor does not exist.
func (r *InstructorRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE instructors SET is_active = $1 WHERE id = $2", active, id)
	if err != nil {
		return fmt.Errorf("update instructor status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update instructor status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
