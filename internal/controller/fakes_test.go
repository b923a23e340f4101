package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"lms-be/internal/dto"
	"lms-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	headerTestUser = "X-Test-User"
	headerTestRole = "X-Test-Role"
)

// fakeAuth stands in for the jwt middleware: the caller identity comes from
// test headers and requests without one are rejected.
func fakeAuth(ctx *fiber.Ctx) error {
	userId := ctx.Get(headerTestUser)
	if userId == "" {
		return serverutils.ErrUnauthorized("missing token")
	}
	ctx.Locals(serverutils.LocalUserID, userId)
	ctx.Locals(serverutils.LocalRole, ctx.Get(headerTestRole))
	return ctx.Next()
}

type routable interface {
	RegisterRoutes(r fiber.Router)
}

func newTestApp(controllers ...routable) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(nil)})
	api := app.Group("/api")
	for _, c := range controllers {
		c.RegisterRoutes(api)
	}
	return app
}

type caller struct {
	id   uuid.UUID
	role string
}

var (
	anonymous = caller{}
	student   = caller{id: uuid.New(), role: "user"}
	admin     = caller{id: uuid.New(), role: "admin"}
)

func do(t *testing.T, app *fiber.App, req *http.Request, who caller) (int, map[string]interface{}) {
	t.Helper()
	if who.id != uuid.Nil {
		req.Header.Set(headerTestUser, who.id.String())
		req.Header.Set(headerTestRole, who.role)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	var buf bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&buf).Encode(payload)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

type formFile struct {
	field string
	name  string
	data  []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

type fakeCourseService struct {
	mu          sync.Mutex
	courses     []*dto.CourseResponse
	lastImage   string
	lastUpdate  *dto.UpdateCourseRequest
	deletedBy   uuid.UUID
	deleteError error
}

func (f *fakeCourseService) List(ctx context.Context) ([]*dto.CourseResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.courses, nil
}

func (f *fakeCourseService) Get(ctx context.Context, id uuid.UUID) (*dto.CourseResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.courses {
		if c.Id == id {
			return c, nil
		}
	}
	return nil, serverutils.ErrNotFound("course not found")
}

func (f *fakeCourseService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCourseRequest, image *multipart.FileHeader) (*dto.CourseResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := &dto.CourseResponse{
		Id:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		ImageUrl:    req.ImageUrl,
		CreatedById: userId,
		CreatedAt:   time.Now(),
	}
	if image != nil {
		f.lastImage = image.Filename
		res.ImageUrl = "/uploads/" + image.Filename
	}
	f.courses = append(f.courses, res)
	return res, nil
}

func (f *fakeCourseService) Update(ctx context.Context, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	f.mu.Lock()
	f.lastUpdate = req
	f.mu.Unlock()
	c, err := f.Get(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		c.Title = *req.Title
	}
	return c, nil
}

func (f *fakeCourseService) Delete(ctx context.Context, userId, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedBy = userId
	return f.deleteError
}

type fakeContentService struct {
	created []*dto.CreateContentRequest
	items   map[uuid.UUID]*dto.ContentResponse
}

func newFakeContentService() *fakeContentService {
	return &fakeContentService{items: map[uuid.UUID]*dto.ContentResponse{}}
}

func (f *fakeContentService) ListByCourse(ctx context.Context, courseId uuid.UUID) ([]*dto.ContentResponse, error) {
	res := []*dto.ContentResponse{}
	for _, c := range f.items {
		if c.CourseId == courseId {
			res = append(res, c)
		}
	}
	return res, nil
}

func (f *fakeContentService) Get(ctx context.Context, id uuid.UUID) (*dto.ContentResponse, error) {
	if c, ok := f.items[id]; ok {
		return c, nil
	}
	return nil, serverutils.ErrNotFound("content not found")
}

func (f *fakeContentService) Create(ctx context.Context, req *dto.CreateContentRequest) (*dto.ContentResponse, error) {
	f.created = append(f.created, req)
	res := &dto.ContentResponse{
		Id:       uuid.New(),
		CourseId: req.CourseId,
		Title:    req.Title,
		Content:  req.Content,
		Order:    req.Order,
	}
	f.items[res.Id] = res
	return res, nil
}

func (f *fakeContentService) Update(ctx context.Context, req *dto.UpdateContentRequest) (*dto.ContentResponse, error) {
	c, err := f.Get(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	if req.Order != nil {
		c.Order = *req.Order
	}
	return c, nil
}

func (f *fakeContentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return serverutils.ErrNotFound("content not found")
	}
	delete(f.items, id)
	return nil
}

type fakeEnrollmentService struct {
	enrolled map[uuid.UUID][]uuid.UUID
}

func (f *fakeEnrollmentService) Enroll(ctx context.Context, userId uuid.UUID, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	for _, id := range f.enrolled[userId] {
		if id == req.CourseId {
			return nil, serverutils.ErrConflict("already enrolled in this course")
		}
	}
	if f.enrolled == nil {
		f.enrolled = map[uuid.UUID][]uuid.UUID{}
	}
	f.enrolled[userId] = append(f.enrolled[userId], req.CourseId)
	return &dto.EnrollmentResponse{Id: uuid.New(), UserId: userId, CourseId: req.CourseId, EnrolledAt: time.Now()}, nil
}

func (f *fakeEnrollmentService) ListMine(ctx context.Context, userId uuid.UUID) ([]*dto.EnrolledCourseResponse, error) {
	res := []*dto.EnrolledCourseResponse{}
	for _, id := range f.enrolled[userId] {
		res = append(res, &dto.EnrolledCourseResponse{Course: dto.CourseResponse{Id: id}})
	}
	return res, nil
}

type fakeAdminService struct {
	lastQuery *dto.LogQuery
}

func (f *fakeAdminService) GetSystemLogs(ctx context.Context, query *dto.LogQuery) ([]dto.LogListResponse, error) {
	f.lastQuery = query
	return []dto.LogListResponse{{Id: "abc", Level: "INFO", Module: "COURSE", Message: "Course created"}}, nil
}

func (f *fakeAdminService) GetLogDetail(ctx context.Context, id string) (*dto.LogDetailResponse, error) {
	if id != "abc" {
		return nil, serverutils.ErrNotFound("log entry not found")
	}
	return &dto.LogDetailResponse{LogListResponse: dto.LogListResponse{Id: id}}, nil
}

type fakeUploadService struct{}

func (fakeUploadService) Upload(ctx context.Context, file *multipart.FileHeader) (*dto.UploadResponse, error) {
	return &dto.UploadResponse{Url: "/uploads/" + file.Filename, Name: file.Filename, Size: file.Size}, nil
}

func (s fakeUploadService) UploadImage(ctx context.Context, file *multipart.FileHeader) (*dto.UploadResponse, error) {
	return s.Upload(ctx, file)
}

func (fakeUploadService) Remove(url string) error { return nil }

type fakeEditorService struct {
	sessions map[string]*dto.EditorSessionResponse
	commands []*dto.EditorCommandRequest
	images   []string
}

func newFakeEditorService() *fakeEditorService {
	return &fakeEditorService{sessions: map[string]*dto.EditorSessionResponse{}}
}

func (f *fakeEditorService) session(id string) (*dto.EditorSessionResponse, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, serverutils.ErrNotFound("editor session not found")
	}
	return s, nil
}

func (f *fakeEditorService) Create(ctx context.Context, req *dto.CreateEditorSessionRequest) (*dto.EditorSessionResponse, error) {
	s := &dto.EditorSessionResponse{Id: uuid.NewString(), Value: req.Value}
	f.sessions[s.Id] = s
	return s, nil
}

func (f *fakeEditorService) Get(ctx context.Context, id string) (*dto.EditorSessionResponse, error) {
	return f.session(id)
}

func (f *fakeEditorService) SetValue(ctx context.Context, id string, req *dto.SetEditorValueRequest) (*dto.EditorSessionResponse, error) {
	s, err := f.session(id)
	if err != nil {
		return nil, err
	}
	s.Value = req.Value
	s.Version++
	return s, nil
}

func (f *fakeEditorService) Command(ctx context.Context, id string, req *dto.EditorCommandRequest) (*dto.EditorSessionResponse, error) {
	s, err := f.session(id)
	if err != nil {
		return nil, err
	}
	f.commands = append(f.commands, req)
	s.Version++
	return s, nil
}

func (f *fakeEditorService) Paste(ctx context.Context, id string, req *dto.EditorPasteRequest) (*dto.EditorSessionResponse, error) {
	s, err := f.session(id)
	if err != nil {
		return nil, err
	}
	s.Value += "<p>" + req.Text + "</p>"
	return s, nil
}

func (f *fakeEditorService) InsertImages(ctx context.Context, id string, files []*multipart.FileHeader) (*dto.EditorImagesResponse, error) {
	s, err := f.session(id)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, serverutils.ErrBadRequest("no files")
	}
	res := &dto.EditorImagesResponse{EditorSessionResponse: *s}
	for _, fh := range files {
		f.images = append(f.images, fh.Filename)
		res.Results = append(res.Results, dto.EditorImageResult{Name: fh.Filename})
	}
	return res, nil
}

func (f *fakeEditorService) Close(ctx context.Context, id string) error {
	if _, err := f.session(id); err != nil {
		return err
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeEditorService) HandleMessage(ctx context.Context, id string, msg *dto.EditorMessage) *dto.EditorMessage {
	return nil
}
