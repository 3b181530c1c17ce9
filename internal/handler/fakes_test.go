package handler

import (
	"context"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/service"
)

type fakeStudentSrv struct {
	students   []models.Student
	pagination *models.Pagination
	profile    *service.StudentProfile
	created    *models.Student
	byEmail    *models.Student
	count      int
	err        error
	lastFilter models.StudentFilter
	lastReq    service.CreateStudentRequest
}

func (f *fakeStudentSrv) List(_ context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	f.lastFilter = filter
	return f.students, f.pagination, f.err
}

func (f *fakeStudentSrv) Count(context.Context) (int, error) { return f.count, f.err }

func (f *fakeStudentSrv) Profile(context.Context, string) (*service.StudentProfile, error) {
	return f.profile, f.err
}

func (f *fakeStudentSrv) Create(_ context.Context, req service.CreateStudentRequest) (*models.Student, error) {
	f.lastReq = req
	return f.created, f.err
}

func (f *fakeStudentSrv) FindByEmail(context.Context, string) (*models.Student, error) {
	if f.byEmail == nil {
		return nil, f.err
	}
	return f.byEmail, nil
}

type fakeCourseSrv struct {
	courses      []models.CourseDetail
	pagination   *models.Pagination
	view         *service.CourseView
	availability *models.CourseAvailability
	course       *models.Course
	err          error
	lastFilter   models.CourseFilter
	lastSlug     string
}

func (f *fakeCourseSrv) List(_ context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	f.lastFilter = filter
	return f.courses, f.pagination, f.err
}

func (f *fakeCourseSrv) View(_ context.Context, slug string) (*service.CourseView, error) {
	f.lastSlug = slug
	return f.view, f.err
}

func (f *fakeCourseSrv) Availability(_ context.Context, slug string) (*models.CourseAvailability, error) {
	f.lastSlug = slug
	return f.availability, f.err
}

func (f *fakeCourseSrv) Create(context.Context, service.CourseRequest) (*models.Course, error) {
	return f.course, f.err
}

func (f *fakeCourseSrv) Update(_ context.Context, slug string, _ service.CourseRequest) (*models.Course, error) {
	f.lastSlug = slug
	return f.course, f.err
}

type fakeEnrollmentSrv struct {
	enrollment *models.Enrollment
	err        error
	lastReq    service.EnrollRequest
	lastStatus service.ChangeStatusRequest
}

func (f *fakeEnrollmentSrv) Enroll(_ context.Context, req service.EnrollRequest) (*models.Enrollment, error) {
	f.lastReq = req
	return f.enrollment, f.err
}

func (f *fakeEnrollmentSrv) ChangeStatus(_ context.Context, _ string, req service.ChangeStatusRequest) (*models.Enrollment, error) {
	f.lastStatus = req
	return f.enrollment, f.err
}

func (f *fakeEnrollmentSrv) Get(context.Context, string) (*models.Enrollment, error) {
	return f.enrollment, f.err
}

type fakeAuthSrv struct {
	user    *models.UserProfile
	session *models.Session
	err     error
	lastReg models.RegisterRequest
}

func (f *fakeAuthSrv) Register(_ context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	f.lastReg = req
	return f.user, f.err
}

func (f *fakeAuthSrv) Login(context.Context, models.LoginRequest) (*models.Session, error) {
	return f.session, f.err
}

func (f *fakeAuthSrv) CurrentUser(context.Context, *models.SessionClaims) (*models.UserProfile, error) {
	return f.user, f.err
}

type fakeFeedbackSrv struct {
	messages []models.FeedbackMessage
	err      error
	lastReq  service.FeedbackRequest
}

func (f *fakeFeedbackSrv) Submit(_ context.Context, req service.FeedbackRequest) (*models.FeedbackMessage, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.FeedbackMessage{ID: "fb-1", Name: req.Name}, nil
}

func (f *fakeFeedbackSrv) List(_ context.Context, page, pageSize int) ([]models.FeedbackMessage, *models.Pagination, error) {
	return f.messages, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(f.messages)}, f.err
}
