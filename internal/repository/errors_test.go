package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueConstraint(t *testing.T) {
	err := fmt.Errorf("create student: %w", &pq.Error{Code: "23505", Constraint: ConstraintStudentEmail})
	name, ok := UniqueConstraint(err)
	assert.True(t, ok)
	assert.Equal(t, ConstraintStudentEmail, name)
	assert.True(t, IsUniqueViolation(err, ConstraintStudentEmail))
	assert.False(t, IsUniqueViolation(err, ConstraintCourseSlug))

	_, ok = UniqueConstraint(&pq.Error{Code: "23503", Constraint: "courses_instructor_id_fkey"})
	assert.False(t, ok)
	_, ok = UniqueConstraint(errors.New("boom"))
	assert.False(t, ok)
}

func TestPageBounds(t *testing.T) {
	page, size, offset := pageBounds(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
	assert.Equal(t, 0, offset)

	page, size, offset = pageBounds(3, 10)
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, size)
	assert.Equal(t, 20, offset)

	_, size, _ = pageBounds(1, 500)
	assert.Equal(t, 20, size)
}
