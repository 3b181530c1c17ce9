package repository

import (
	"errors"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// Constraint names declared by the schema migrations.
const (
	ConstraintUserUsername      = "user_profiles_username_key"
	ConstraintUserEmail         = "user_profiles_email_key"
	ConstraintStudentEmail      = "students_email_key"
	ConstraintInstructorEmail   = "instructors_email_key"
	ConstraintCourseTitle       = "courses_title_key"
	ConstraintCourseSlug        = "courses_slug_key"
	ConstraintEnrollmentPairKey = "enrollments_student_course_key"
)

// UniqueConstraint returns the name of the violated unique constraint when err
// originates from a Postgres unique violation.
func UniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}
	if string(pqErr.Code) != pqUniqueViolation {
		return "", false
	}
	return pqErr.Constraint, true
}

// IsUniqueViolation reports whether err violates the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	name, ok := UniqueConstraint(err)
	return ok && name == constraint
}

func pageBounds(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size, (page - 1) * size
}
