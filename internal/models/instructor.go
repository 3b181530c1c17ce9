package models

import "time"

// Instructor teaches courses.
type Instructor struct {
	ID             string    `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          string    `db:"email" json:"email"`
	Specialization string    `db:"specialization" json:"specialization"`
	Degree         string    `db:"degree" json:"degree"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// FullName returns "first last".
func (i Instructor) FullName() string {
	return i.FirstName + " " + i.LastName
}

// InstructorFilter captures filtering options for listing instructors.
type InstructorFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
