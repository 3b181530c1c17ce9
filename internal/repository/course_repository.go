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

const courseColumns = "c.id, c.title, c.slug, c.description, c.duration, c.instructor_id, c.level, c.max_students, c.price, c.is_active, c.created_at, c.updated_at"

const courseDetailSelect = `SELECT ` + courseColumns + `,
        i.first_name || ' ' || i.last_name AS instructor_name,
        (SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.status = 'ACTIVE') AS active_enrollments
        FROM courses c LEFT JOIN instructors i ON i.id = c.instructor_id`

// CourseRepository provides CRUD operations for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns course details matching the filter ordered by title.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("c.level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("c.instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("c.is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.title) LIKE $%d OR LOWER(c.description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")
	_, size, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s WHERE %s ORDER BY c.title ASC LIMIT %d OFFSET %d", courseDetailSelect, where, size, offset)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses c WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindDetailBySlug returns a course with instructor name and enrollment count.
func (r *CourseRepository) FindDetailBySlug(ctx context.Context, slug string) (*models.CourseDetail, error) {
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, courseDetailSelect+" WHERE c.slug = $1", slug); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindBySlug returns the bare course for a slug.
func (r *CourseRepository) FindBySlug(ctx context.Context, slug string) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, "SELECT "+courseColumns+" FROM courses c WHERE c.slug = $1", slug); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByID returns the course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, "SELECT "+courseColumns+" FROM courses c WHERE c.id = $1", id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByTitle checks whether another course already uses the title.
func (r *CourseRepository) ExistsByTitle(ctx context.Context, title, excludeID string) (bool, error) {
	return r.exists(ctx, "title", title, excludeID)
}

// ExistsBySlug checks whether another course already uses the slug.
func (r *CourseRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.exists(ctx, "slug", slug, excludeID)
}

func (r *CourseRepository) exists(ctx context.Context, column, value, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM courses WHERE %s = $1", column)
	args := []interface{}{value}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course %s: %w", column, err)
	}
	return true, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, title, slug, description, duration, instructor_id, level, max_students, price, is_active, created_at, updated_at)
        VALUES (:id, :title, :slug, :description, :duration, :instructor_id, :level, :max_students, :price, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, slug = :slug, description = :description, duration = :duration, instructor_id = :instructor_id,
        level = :level, max_students = :max_students, price = :price, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}
