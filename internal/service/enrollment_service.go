package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lms-be/internal/dto"
	"lms-be/internal/entity"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/pkg/mailer"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/repository/specification"
	"lms-be/internal/repository/unitofwork"
	"lms-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IEnrollmentService interface {
	Enroll(ctx context.Context, userId uuid.UUID, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error)
	ListMine(ctx context.Context, userId uuid.UUID) ([]*dto.EnrolledCourseResponse, error)
}

type enrollmentService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	publisher    events.Publisher
	logger       logger.ILogger
	clientURL    string
}

func NewEnrollmentService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	publisher events.Publisher,
	log logger.ILogger,
	clientURL string,
) IEnrollmentService {
	return &enrollmentService{
		uowFactory:   uowFactory,
		emailService: emailService,
		publisher:    publisher,
		logger:       log,
		clientURL:    strings.TrimRight(clientURL, "/"),
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userId uuid.UUID, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: req.CourseId})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, serverutils.ErrNotFound("course not found")
	}

	existing, err := uow.EnrollmentRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByCourseID{CourseID: req.CourseId},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, serverutils.ErrConflict("already enrolled in this course")
	}

	enrollment := &entity.Enrollment{
		Id:         uuid.New(),
		UserId:     userId,
		CourseId:   req.CourseId,
		EnrolledAt: time.Now(),
	}
	if err := uow.EnrollmentRepository().Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, serverutils.ErrConflict("already enrolled in this course")
		}
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.EnrollmentCreated(enrollment.Id, userId, course.Id)); err != nil {
		s.logger.Warn("ENROLLMENT", "Event publish failed", map[string]interface{}{"error": err.Error()})
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err == nil && user != nil && user.Email != nil {
		go s.sendConfirmation(*user.Email, user.Username, course)
	}

	return &dto.EnrollmentResponse{
		Id:         enrollment.Id,
		UserId:     enrollment.UserId,
		CourseId:   enrollment.CourseId,
		EnrolledAt: enrollment.EnrolledAt,
	}, nil
}

func (s *enrollmentService) sendConfirmation(email, username string, course *entity.Course) {
	url := fmt.Sprintf("%s/courses/%s", s.clientURL, course.Id)
	err := s.emailService.SendEnrollmentConfirmation(email, username, course.Title, url)
	if err != nil && !errors.Is(err, mailer.ErrMailerDisabled) {
		s.logger.Warn("ENROLLMENT", "Confirmation mail failed", map[string]interface{}{
			"course_id": course.Id.String(),
			"error":     err.Error(),
		})
	}
}

func (s *enrollmentService) ListMine(ctx context.Context, userId uuid.UUID) ([]*dto.EnrolledCourseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.EnrollmentRepository().FindCoursesByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.EnrolledCourseResponse, 0, len(items))
	for _, item := range items {
		course := item.Course
		res = append(res, &dto.EnrolledCourseResponse{
			Course:     *toCourseResponse(&course),
			EnrolledAt: item.EnrolledAt,
		})
	}
	return res, nil
}
