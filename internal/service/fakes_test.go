package service

import (
	"context"
	"sort"
	"sync"

	"lms-be/internal/entity"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/repository/contract"
	"lms-be/internal/repository/specification"
	"lms-be/internal/repository/unitofwork"
	"lms-be/pkg/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func testLogger() logger.ILogger {
	return logger.FromZap(zap.NewNop())
}

// fakeStore backs every fake repository. Transactions are not isolated:
// writes apply immediately and Commit/Rollback are only counted.
type fakeStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]entity.User
	courses     map[uuid.UUID]entity.Course
	contents    map[uuid.UUID]entity.Content
	enrollments map[uuid.UUID]entity.Enrollment

	// enrollmentCreateErr is returned by the next EnrollmentRepository.Create.
	enrollmentCreateErr error
	begins, commits     int
	// beforeMark runs inside ContentRepository.MarkHighlighted with mu held.
	beforeMark func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[uuid.UUID]entity.User{},
		courses:     map[uuid.UUID]entity.Course{},
		contents:    map[uuid.UUID]entity.Content{},
		enrollments: map[uuid.UUID]entity.Enrollment{},
	}
}

func (s *fakeStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: s}
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.store.mu.Lock()
	u.store.begins++
	u.store.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.store.mu.Lock()
	u.store.commits++
	u.store.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) Rollback() error { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepo{u.store}
}

func (u *fakeUnitOfWork) CourseRepository() contract.CourseRepository {
	return &fakeCourseRepo{u.store}
}

func (u *fakeUnitOfWork) ContentRepository() contract.ContentRepository {
	return &fakeContentRepo{u.store}
}

func (u *fakeUnitOfWork) EnrollmentRepository() contract.EnrollmentRepository {
	return &fakeEnrollmentRepo{u.store}
}

// criteria is the subset of specifications the services use.
type criteria struct {
	id       *uuid.UUID
	courseID *uuid.UUID
	userID   *uuid.UUID
	username *string
}

func parseSpecs(specs []specification.Specification) criteria {
	var c criteria
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			c.id = &s.ID
		case specification.ByCourseID:
			c.courseID = &s.CourseID
		case specification.UserOwnedBy:
			c.userID = &s.UserID
		case specification.ByUsername:
			c.username = &s.Username
		}
	}
	return c
}

func (c criteria) match(id, courseID, userID uuid.UUID, username string) bool {
	return (c.id == nil || *c.id == id) &&
		(c.courseID == nil || *c.courseID == courseID) &&
		(c.userID == nil || *c.userID == userID) &&
		(c.username == nil || *c.username == username)
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.users[user.Id] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.Id] = *user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := parseSpecs(specs)
	var out []*entity.User
	for _, u := range r.s.users {
		if c.match(u.Id, uuid.Nil, uuid.Nil, u.Username) && c.courseID == nil && c.userID == nil {
			u := u
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeCourseRepo struct{ s *fakeStore }

func (r *fakeCourseRepo) Create(ctx context.Context, course *entity.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.courses[course.Id] = *course
	return nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, course *entity.Course) error {
	return r.Create(ctx, course)
}

func (r *fakeCourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.courses, id)
	return nil
}

func (r *fakeCourseRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Course, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeCourseRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := parseSpecs(specs)
	var out []*entity.Course
	for _, course := range r.s.courses {
		if c.match(course.Id, course.Id, course.CreatedById, "") {
			course := course
			out = append(out, &course)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCourseRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeContentRepo struct{ s *fakeStore }

func (r *fakeContentRepo) Create(ctx context.Context, content *entity.Content) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.contents[content.Id] = *content
	return nil
}

func (r *fakeContentRepo) Update(ctx context.Context, content *entity.Content) error {
	return r.Create(ctx, content)
}

func (r *fakeContentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.contents, id)
	return nil
}

func (r *fakeContentRepo) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.contents {
		if c.CourseId == courseId {
			delete(r.s.contents, id)
		}
	}
	return nil
}

func (r *fakeContentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Content, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeContentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Content, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := parseSpecs(specs)
	var out []*entity.Content
	for _, content := range r.s.contents {
		if c.match(content.Id, content.CourseId, uuid.Nil, "") && c.userID == nil {
			content := content
			out = append(out, &content)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeContentRepo) MarkHighlighted(ctx context.Context, id uuid.UUID, loaded, body string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.beforeMark != nil {
		r.s.beforeMark()
	}
	c, ok := r.s.contents[id]
	if !ok || c.Body != loaded {
		return false, nil
	}
	c.Body = body
	c.Highlighted = true
	r.s.contents[id] = c
	return true, nil
}

type fakeEnrollmentRepo struct{ s *fakeStore }

func (r *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enrollmentCreateErr; err != nil {
		r.s.enrollmentCreateErr = nil
		return err
	}
	r.s.enrollments[enrollment.Id] = *enrollment
	return nil
}

func (r *fakeEnrollmentRepo) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, e := range r.s.enrollments {
		if e.CourseId == courseId {
			delete(r.s.enrollments, id)
		}
	}
	return nil
}

func (r *fakeEnrollmentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Enrollment, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeEnrollmentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := parseSpecs(specs)
	var out []*entity.Enrollment
	for _, e := range r.s.enrollments {
		if c.match(e.Id, e.CourseId, e.UserId, "") {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) FindCoursesByUser(ctx context.Context, userId uuid.UUID) ([]*entity.EnrolledCourse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.EnrolledCourse
	for _, e := range r.s.enrollments {
		if e.UserId != userId {
			continue
		}
		if course, ok := r.s.courses[e.CourseId]; ok {
			out = append(out, &entity.EnrolledCourse{Course: course, EnrolledAt: e.EnrolledAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.EventType()
	}
	return out
}

type mailCall struct {
	to, username, courseTitle, courseURL string
}

type fakeMailer struct {
	calls chan mailCall
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{calls: make(chan mailCall, 8)}
}

func (m *fakeMailer) SendWelcome(toEmail, username string) error {
	m.calls <- mailCall{to: toEmail, username: username}
	return nil
}

func (m *fakeMailer) SendEnrollmentConfirmation(toEmail, username, courseTitle, courseURL string) error {
	m.calls <- mailCall{to: toEmail, username: username, courseTitle: courseTitle, courseURL: courseURL}
	return nil
}
