package service

import (
	"context"
	"mime/multipart"
	"time"

	"lms-be/internal/dto"
	"lms-be/internal/entity"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/repository/scope"
	"lms-be/internal/repository/specification"
	"lms-be/internal/repository/unitofwork"
	"lms-be/pkg/events"

	"github.com/google/uuid"
)

type ICourseService interface {
	List(ctx context.Context) ([]*dto.CourseResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CourseResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCourseRequest, image *multipart.FileHeader) (*dto.CourseResponse, error)
	Update(ctx context.Context, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	Delete(ctx context.Context, userId, id uuid.UUID) error
}

type courseService struct {
	uowFactory    unitofwork.RepositoryFactory
	uploadService IUploadService
	publisher     events.Publisher
	logger        logger.ILogger
}

func NewCourseService(uowFactory unitofwork.RepositoryFactory, uploadService IUploadService, publisher events.Publisher, log logger.ILogger) ICourseService {
	return &courseService{
		uowFactory:    uowFactory,
		uploadService: uploadService,
		publisher:     publisher,
		logger:        log,
	}
}

func (s *courseService) List(ctx context.Context) ([]*dto.CourseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	courses, err := uow.CourseRepository().FindAll(ctx, specification.Scope(scope.OrderByCreatedDesc))
	if err != nil {
		return nil, err
	}
	res := make([]*dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		res = append(res, toCourseResponse(c))
	}
	return res, nil
}

func (s *courseService) Get(ctx context.Context, id uuid.UUID) (*dto.CourseResponse, error) {
	course, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseService) find(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, serverutils.ErrNotFound("course not found")
	}
	return course, nil
}

func (s *courseService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCourseRequest, image *multipart.FileHeader) (*dto.CourseResponse, error) {
	imageUrl := req.ImageUrl
	if image != nil {
		uploaded, err := s.uploadService.UploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		imageUrl = uploaded.Url
	}

	course := &entity.Course{
		Id:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		ImageUrl:    imageUrl,
		CreatedById: userId,
		CreatedAt:   time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CourseRepository().Create(ctx, course); err != nil {
		if image != nil {
			_ = s.uploadService.Remove(imageUrl)
		}
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.CourseCreated(course.Id, userId, course.Title)); err != nil {
		s.logger.Warn("COURSE", "Event publish failed", map[string]interface{}{"error": err.Error()})
	}
	return toCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.find(ctx, req.Id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.ImageUrl != nil {
		course.ImageUrl = *req.ImageUrl
	}
	now := time.Now()
	course.UpdatedAt = &now

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CourseRepository().Update(ctx, course); err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

// Delete removes the course with its lessons and enrollments in one transaction.
func (s *courseService) Delete(ctx context.Context, userId, id uuid.UUID) error {
	course, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ContentRepository().DeleteByCourseId(ctx, id); err != nil {
		return err
	}
	if err := uow.EnrollmentRepository().DeleteByCourseId(ctx, id); err != nil {
		return err
	}
	if err := uow.CourseRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if err := s.uploadService.Remove(course.ImageUrl); err != nil {
		s.logger.Warn("COURSE", "Course image cleanup failed", map[string]interface{}{"error": err.Error()})
	}
	if err := s.publisher.Publish(ctx, events.CourseDeleted(id, userId)); err != nil {
		s.logger.Warn("COURSE", "Event publish failed", map[string]interface{}{"error": err.Error()})
	}
	s.logger.Info("COURSE", "Course deleted", map[string]interface{}{"course_id": id.String()})
	return nil
}

func toCourseResponse(c *entity.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		Id:          c.Id,
		Title:       c.Title,
		Description: c.Description,
		ImageUrl:    c.ImageUrl,
		CreatedById: c.CreatedById,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
