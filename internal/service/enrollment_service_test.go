package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fefu-courses/internal/models"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
)

type enrollmentFixture struct {
	svc      *EnrollmentService
	repo     *fakeEnrollmentRepo
	students *fakeStudentRepo
	courses  *fakeCourseRepo
	cache    *memoryCache
	courseID string
}

func newEnrollmentFixture(t *testing.T, maxStudents int, studentCount int) *enrollmentFixture {
	t.Helper()
	courseID := uuid.NewString()
	courses := &fakeCourseRepo{courses: map[string]models.Course{
		courseID: {ID: courseID, Title: "Go", Slug: "go", MaxStudents: maxStudents, IsActive: true},
	}}
	students := &fakeStudentRepo{students: map[string]models.Student{}}
	for i := 0; i < studentCount; i++ {
		id := uuid.NewString()
		students.students[id] = models.Student{ID: id, FirstName: "S", LastName: id}
	}
	repo := newFakeEnrollmentRepo(courses)
	cache := newMemoryCache()
	cacheSvc := NewCacheService(cache, nil, time.Minute, nil, true)
	svc := NewEnrollmentService(repo, students, courses, cacheSvc, NewMetricsService(), nil, nil)
	return &enrollmentFixture{svc: svc, repo: repo, students: students, courses: courses, cache: cache, courseID: courseID}
}

func (f *enrollmentFixture) studentIDs() []string {
	ids := make([]string, 0, len(f.students.students))
	for id := range f.students.students {
		ids = append(ids, id)
	}
	return ids
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	f := newEnrollmentFixture(t, 2, 1)
	studentID := f.studentIDs()[0]
	_ = f.cache.Set(context.Background(), "courses:list:any", "stale", time.Minute)

	enrollment, err := f.svc.Enroll(context.Background(), EnrollRequest{StudentID: studentID, CourseID: f.courseID})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Contains(t, f.cache.deleted, "courses:*")
	assert.Empty(t, f.cache.entries)

	availability, err := f.svc.Availability(context.Background(), f.courseID)
	require.NoError(t, err)
	assert.Equal(t, 1, availability.ActiveEnrollments)
	assert.Equal(t, 1, availability.AvailableSpots)
}

func TestEnrollmentServiceRejectsDuplicate(t *testing.T) {
	f := newEnrollmentFixture(t, 5, 1)
	req := EnrollRequest{StudentID: f.studentIDs()[0], CourseID: f.courseID}

	_, err := f.svc.Enroll(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Enroll(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateEnrollment)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
}

func TestEnrollmentServiceRejectsDuplicateAfterStatusChange(t *testing.T) {
	for _, status := range []models.EnrollmentStatus{models.EnrollmentStatusDropped, models.EnrollmentStatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			f := newEnrollmentFixture(t, 5, 1)
			req := EnrollRequest{StudentID: f.studentIDs()[0], CourseID: f.courseID}

			first, err := f.svc.Enroll(context.Background(), req)
			require.NoError(t, err)
			_, err = f.svc.ChangeStatus(context.Background(), first.ID, ChangeStatusRequest{Status: status})
			require.NoError(t, err)

			_, err = f.svc.Enroll(context.Background(), req)
			assert.ErrorIs(t, err, appErrors.ErrDuplicateEnrollment)

			count, err := f.repo.CountActive(context.Background(), f.courseID)
			require.NoError(t, err)
			assert.Zero(t, count)
			assert.Len(t, f.repo.enrollments, 1)
		})
	}
}

func TestEnrollmentServiceRejectsFullCourse(t *testing.T) {
	f := newEnrollmentFixture(t, 1, 2)
	ids := f.studentIDs()

	_, err := f.svc.Enroll(context.Background(), EnrollRequest{StudentID: ids[0], CourseID: f.courseID})
	require.NoError(t, err)

	_, err = f.svc.Enroll(context.Background(), EnrollRequest{StudentID: ids[1], CourseID: f.courseID})
	assert.ErrorIs(t, err, appErrors.ErrCourseFull)
}

func TestEnrollmentServiceConcurrentEnrollNeverOverfills(t *testing.T) {
	f := newEnrollmentFixture(t, 5, 20)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, full := 0, 0
	for _, id := range f.studentIDs() {
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			_, err := f.svc.Enroll(context.Background(), EnrollRequest{StudentID: studentID, CourseID: f.courseID})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, appErrors.ErrCourseFull) {
				full++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 5, created)
	assert.Equal(t, 15, full)
	active, err := f.repo.CountActive(context.Background(), f.courseID)
	require.NoError(t, err)
	assert.Equal(t, 5, active)
}

func TestEnrollmentServiceValidation(t *testing.T) {
	f := newEnrollmentFixture(t, 1, 1)
	studentID := f.studentIDs()[0]

	_, err := f.svc.Enroll(context.Background(), EnrollRequest{StudentID: "not-a-uuid", CourseID: f.courseID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Contains(t, appErrors.FieldErrors(err), "student_id")

	_, err = f.svc.Enroll(context.Background(), EnrollRequest{StudentID: uuid.NewString(), CourseID: f.courseID})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.Enroll(context.Background(), EnrollRequest{StudentID: studentID, CourseID: uuid.NewString()})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	course := f.courses.courses[f.courseID]
	course.IsActive = false
	f.courses.courses[f.courseID] = course
	_, err = f.svc.Enroll(context.Background(), EnrollRequest{StudentID: studentID, CourseID: f.courseID})
	require.Error(t, err)
	assert.Equal(t, "Запись на этот курс закрыта", appErrors.FieldErrors(err)["course_id"])
}

func TestEnrollmentServiceChangeStatus(t *testing.T) {
	f := newEnrollmentFixture(t, 1, 2)
	ids := f.studentIDs()
	fixed := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	first, err := f.svc.Enroll(context.Background(), EnrollRequest{StudentID: ids[0], CourseID: f.courseID})
	require.NoError(t, err)

	completed, err := f.svc.ChangeStatus(context.Background(), first.ID, ChangeStatusRequest{Status: models.EnrollmentStatusCompleted})
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)
	assert.True(t, completed.CompletedAt.Equal(fixed))

	// The completed enrollment freed the only seat.
	second, err := f.svc.Enroll(context.Background(), EnrollRequest{StudentID: ids[1], CourseID: f.courseID})
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(context.Background(), first.ID, ChangeStatusRequest{Status: models.EnrollmentStatusActive})
	assert.ErrorIs(t, err, appErrors.ErrCourseFull)

	dropped, err := f.svc.ChangeStatus(context.Background(), second.ID, ChangeStatusRequest{Status: models.EnrollmentStatusDropped})
	require.NoError(t, err)
	assert.Nil(t, dropped.CompletedAt)

	reactivated, err := f.svc.ChangeStatus(context.Background(), first.ID, ChangeStatusRequest{Status: models.EnrollmentStatusActive})
	require.NoError(t, err)
	assert.Nil(t, reactivated.CompletedAt)
}

func TestEnrollmentServiceChangeStatusErrors(t *testing.T) {
	f := newEnrollmentFixture(t, 1, 1)

	_, err := f.svc.ChangeStatus(context.Background(), "bogus", ChangeStatusRequest{Status: models.EnrollmentStatusDropped})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.ChangeStatus(context.Background(), uuid.NewString(), ChangeStatusRequest{Status: models.EnrollmentStatusDropped})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.ChangeStatus(context.Background(), uuid.NewString(), ChangeStatusRequest{Status: "PAUSED"})
	require.Error(t, err)
	assert.Equal(t, "Недопустимый статус записи", appErrors.FieldErrors(err)["status"])
}
