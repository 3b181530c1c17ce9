package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusDropped   EnrollmentStatus = "DROPPED"
)

var statusLabels = map[EnrollmentStatus]string{
	EnrollmentStatusActive:    "Активен",
	EnrollmentStatusCompleted: "Завершен",
	EnrollmentStatusDropped:   "Отчислен",
}

// Label returns the human readable status.
func (s EnrollmentStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is a known status.
func (s EnrollmentStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Enrollment links a student to a course. Only ACTIVE ones count against capacity.
type Enrollment struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	CourseID    string           `db:"course_id" json:"course_id"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt  time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CompletedAt *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentFirstName string `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string `db:"student_last_name" json:"student_last_name"`
	CourseTitle      string `db:"course_title" json:"course_title"`
	CourseSlug       string `db:"course_slug" json:"course_slug"`
}

// StudentName returns "first last" of the enrolled student.
func (e EnrollmentDetail) StudentName() string {
	return e.StudentFirstName + " " + e.StudentLastName
}
