package models

import "time"

// CourseLevel describes the difficulty of a course.
type CourseLevel string

// Course levels.
const (
	LevelBeginner     CourseLevel = "BEGINNER"
	LevelIntermediate CourseLevel = "INTERMEDIATE"
	LevelAdvanced     CourseLevel = "ADVANCED"
)

var levelLabels = map[CourseLevel]string{
	LevelBeginner:     "Начальный",
	LevelIntermediate: "Средний",
	LevelAdvanced:     "Продвинутый",
}

// CourseLevels lists every level in display order.
func CourseLevels() []CourseLevel {
	return []CourseLevel{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// Label returns the human readable level name.
func (l CourseLevel) Label() string {
	if label, ok := levelLabels[l]; ok {
		return label
	}
	return string(l)
}

// Valid reports whether l is a known level.
func (l CourseLevel) Valid() bool {
	_, ok := levelLabels[l]
	return ok
}

// Default course attributes.
const (
	DefaultMaxStudents = 30
	MinDuration        = 1
	MaxDuration        = 500
)

// Course is a unit of study students can enroll in.
type Course struct {
	ID           string      `db:"id" json:"id"`
	Title        string      `db:"title" json:"title"`
	Slug         string      `db:"slug" json:"slug"`
	Description  string      `db:"description" json:"description"`
	Duration     int         `db:"duration" json:"duration"`
	InstructorID *string     `db:"instructor_id" json:"instructor_id,omitempty"`
	Level        CourseLevel `db:"level" json:"level"`
	MaxStudents  int         `db:"max_students" json:"max_students"`
	Price        float64     `db:"price" json:"price"`
	IsActive     bool        `db:"is_active" json:"is_active"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// CourseDetail enriches Course with instructor and seat information.
type CourseDetail struct {
	Course
	InstructorName    *string `db:"instructor_name" json:"instructor_name,omitempty"`
	ActiveEnrollments int     `db:"active_enrollments" json:"active_enrollments"`
}

// AvailableSpots is max_students minus active enrollments. It is floored at
// zero so a capacity lowered below the current roster never displays a
// negative number.
func (c CourseDetail) AvailableSpots() int {
	spots := c.MaxStudents - c.ActiveEnrollments
	if spots < 0 {
		return 0
	}
	return spots
}

// IsFull reports whether no seats remain.
func (c CourseDetail) IsFull() bool {
	return c.ActiveEnrollments >= c.MaxStudents
}

// CourseAvailability is the seat summary for a course.
type CourseAvailability struct {
	CourseID          string `json:"course_id"`
	Slug              string `json:"slug"`
	MaxStudents       int    `json:"max_students"`
	ActiveEnrollments int    `json:"active_enrollments"`
	AvailableSpots    int    `json:"available_spots"`
}

// CourseFilter defines filter criteria for listing courses.
type CourseFilter struct {
	Search       string
	Level        CourseLevel
	InstructorID string
	Active       *bool
	Page         int
	PageSize     int
}
