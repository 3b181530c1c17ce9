package models

import "time"

// Faculty identifies the faculty a student belongs to.
type Faculty string

// Faculties offered by the university.
const (
	FacultyCyberSecurity Faculty = "CS"
	FacultySoftwareEng   Faculty = "SE"
	FacultyInfoTech      Faculty = "IT"
	FacultyDataScience   Faculty = "DS"
	FacultyWebTech       Faculty = "WEB"
)

var facultyLabels = map[Faculty]string{
	FacultyCyberSecurity: "Кибербезопасность",
	FacultySoftwareEng:   "Программная инженерия",
	FacultyInfoTech:      "Информационные технологии",
	FacultyDataScience:   "Наука о данных",
	FacultyWebTech:       "Веб-технологии",
}

// Faculties lists every faculty in display order.
func Faculties() []Faculty {
	return []Faculty{FacultyCyberSecurity, FacultySoftwareEng, FacultyInfoTech, FacultyDataScience, FacultyWebTech}
}

// Label returns the human readable faculty name.
func (f Faculty) Label() string {
	if label, ok := facultyLabels[f]; ok {
		return label
	}
	return "Неизвестно"
}

// Valid reports whether f is a known faculty.
func (f Faculty) Valid() bool {
	_, ok := facultyLabels[f]
	return ok
}

// Student represents a learner registered at the university.
type Student struct {
	ID        string     `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     string     `db:"email" json:"email"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Faculty   Faculty    `db:"faculty" json:"faculty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// FullName returns "first last".
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Faculty  Faculty
	Page     int
	PageSize int
}
