package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fefu-courses/internal/models"
)

var courseDetailColumns = []string{"id", "title", "slug", "description", "duration", "instructor_id", "level", "max_students", "price", "is_active", "created_at", "updated_at", "instructor_name", "active_enrollments"}

func TestCourseRepositoryListByLevel(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(courseDetailColumns).
		AddRow("c-1", "Go Basics", "go-basics", "", 36, "i-1", "BEGINNER", 2, "1500.00", true, now, now, "Olga Ivanova", 1).
		AddRow("c-2", "Python", "python", "", 20, nil, "BEGINNER", 30, "0", true, now, now, nil, 0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses c LEFT JOIN instructors i ON i.id = c.instructor_id WHERE 1=1 AND c.level = $1 AND c.is_active = $2 ORDER BY c.title ASC LIMIT 20 OFFSET 0")).
		WithArgs(models.LevelBeginner, true).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses c WHERE 1=1 AND c.level = $1 AND c.is_active = $2")).
		WithArgs(models.LevelBeginner, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	active := true
	courses, total, err := repo.List(context.Background(), models.CourseFilter{Level: models.LevelBeginner, Active: &active})
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1500.0, courses[0].Price)
	require.NotNil(t, courses[0].InstructorName)
	assert.Equal(t, "Olga Ivanova", *courses[0].InstructorName)
	assert.Equal(t, 1, courses[0].AvailableSpots())
	assert.Nil(t, courses[1].InstructorID)
	assert.Equal(t, 30, courses[1].AvailableSpots())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryExistsBySlugExcludesSelf(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM courses WHERE slug = $1 AND id <> $2 LIMIT 1")).
		WithArgs("go-basics", "c-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))

	exists, err := repo.ExistsBySlug(context.Background(), "go-basics", "c-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(sqlmock.AnyArg(), "Go Basics", "go-basics", "", 36, nil, models.LevelBeginner, 30, 0.0, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{Title: "Go Basics", Slug: "go-basics", Duration: 36, Level: models.LevelBeginner, MaxStudents: 30, IsActive: true}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, course.CreatedAt, course.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
