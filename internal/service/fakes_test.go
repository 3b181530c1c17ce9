package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/fefu-courses/internal/models"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

type fakeStudentRepo struct {
	students   map[string]models.Student
	lastFilter models.StudentFilter
	createErr  error
}

func (f *fakeStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	f.lastFilter = filter
	out := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, len(out), nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	for _, s := range f.students {
		if s.Email == email {
			student := s
			return &student, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeStudentRepo) Count(ctx context.Context) (int, error) {
	return len(f.students), nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.students == nil {
		f.students = map[string]models.Student{}
	}
	student.ID = uuid.NewString()
	student.CreatedAt = time.Now().UTC()
	f.students[student.ID] = *student
	return nil
}

type fakeCourseRepo struct {
	courses   map[string]models.Course
	listCalls int
	createErr error
}

func (f *fakeCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	f.listCalls++
	out := []models.CourseDetail{}
	for _, c := range f.courses {
		if filter.Level != "" && c.Level != filter.Level {
			continue
		}
		out = append(out, models.CourseDetail{Course: c})
	}
	return out, len(out), nil
}

func (f *fakeCourseRepo) FindDetailBySlug(ctx context.Context, slug string) (*models.CourseDetail, error) {
	c, err := f.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &models.CourseDetail{Course: *c}, nil
}

func (f *fakeCourseRepo) FindBySlug(ctx context.Context, slug string) (*models.Course, error) {
	for _, c := range f.courses {
		if c.Slug == slug {
			course := c
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCourseRepo) ExistsByTitle(ctx context.Context, title, excludeID string) (bool, error) {
	for id, c := range f.courses {
		if c.Title == title && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCourseRepo) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	for id, c := range f.courses {
		if c.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.courses == nil {
		f.courses = map[string]models.Course{}
	}
	course.ID = uuid.NewString()
	f.courses[course.ID] = *course
	return nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	f.courses[course.ID] = *course
	return nil
}

type fakeInstructorRepo struct {
	instructors map[string]models.Instructor
}

func (f *fakeInstructorRepo) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error) {
	out := []models.Instructor{}
	for _, i := range f.instructors {
		out = append(out, i)
	}
	return out, len(out), nil
}

func (f *fakeInstructorRepo) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	if i, ok := f.instructors[id]; ok {
		return &i, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeInstructorRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, i := range f.instructors {
		if i.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInstructorRepo) Create(ctx context.Context, instructor *models.Instructor) error {
	if f.instructors == nil {
		f.instructors = map[string]models.Instructor{}
	}
	instructor.ID = uuid.NewString()
	f.instructors[instructor.ID] = *instructor
	return nil
}

func (f *fakeInstructorRepo) SetActive(ctx context.Context, id string, active bool) error {
	i, ok := f.instructors[id]
	if !ok {
		return sql.ErrNoRows
	}
	i.IsActive = active
	f.instructors[id] = i
	return nil
}

// fakeEnrollmentRepo mirrors the locked capacity check of the SQL repository
// with a mutex standing in for the course row lock.
type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	courses     *fakeCourseRepo
	enrollments map[string]models.Enrollment
}

func newFakeEnrollmentRepo(courses *fakeCourseRepo) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{courses: courses, enrollments: map[string]models.Enrollment{}}
}

func (f *fakeEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollmentRepo) countActiveLocked(courseID string) int {
	count := 0
	for _, e := range f.enrollments {
		if e.CourseID == courseID && e.Status == models.EnrollmentStatusActive {
			count++
		}
	}
	return count
}

func (f *fakeEnrollmentRepo) CountActive(ctx context.Context, courseID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countActiveLocked(courseID), nil
}

func (f *fakeEnrollmentRepo) CreateWithCapacity(ctx context.Context, enrollment *models.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	course, ok := f.courses.courses[enrollment.CourseID]
	if !ok {
		return sql.ErrNoRows
	}
	for _, e := range f.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID {
			return appErrors.ErrDuplicateEnrollment
		}
	}
	if f.countActiveLocked(enrollment.CourseID) >= course.MaxStudents {
		return appErrors.ErrCourseFull
	}
	enrollment.ID = uuid.NewString()
	enrollment.Status = models.EnrollmentStatusActive
	f.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (f *fakeEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, at time.Time) (*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if status == models.EnrollmentStatusActive && e.Status != models.EnrollmentStatusActive {
		if f.countActiveLocked(e.CourseID) >= f.courses.courses[e.CourseID].MaxStudents {
			return nil, appErrors.ErrCourseFull
		}
	}
	e.Status = status
	e.CompletedAt = nil
	if status == models.EnrollmentStatusCompleted {
		completed := at
		e.CompletedAt = &completed
	}
	f.enrollments[id] = e
	return &e, nil
}

func (f *fakeEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.EnrollmentDetail{}
	for _, e := range f.enrollments {
		if e.StudentID == studentID {
			out = append(out, models.EnrollmentDetail{Enrollment: e})
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.EnrollmentDetail{}
	for _, e := range f.enrollments {
		if e.CourseID == courseID {
			out = append(out, models.EnrollmentDetail{Enrollment: e})
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users         map[string]models.UserProfile
	createErr     error
	lastLoginErr  error
	lastLoginSeen bool
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	for _, u := range f.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.UserProfile, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.FindByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.UserProfile) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.users == nil {
		f.users = map[string]models.UserProfile{}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	f.lastLoginSeen = true
	return f.lastLoginErr
}

type fakeFeedbackRepo struct {
	messages []models.FeedbackMessage
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, msg *models.FeedbackMessage) error {
	msg.ID = uuid.NewString()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeFeedbackRepo) List(ctx context.Context, page, pageSize int) ([]models.FeedbackMessage, int, error) {
	return f.messages, len(f.messages), nil
}
