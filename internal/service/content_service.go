package service

import (
	"context"
	"encoding/json"
	"time"

	"lms-be/internal/dto"
	"lms-be/internal/entity"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/pkg/render"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/repository/specification"
	"lms-be/internal/repository/unitofwork"
	"lms-be/pkg/richtext"

	"github.com/google/uuid"
)

type IContentService interface {
	ListByCourse(ctx context.Context, courseId uuid.UUID) ([]*dto.ContentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ContentResponse, error)
	Create(ctx context.Context, req *dto.CreateContentRequest) (*dto.ContentResponse, error)
	Update(ctx context.Context, req *dto.UpdateContentRequest) (*dto.ContentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	renderer         *render.Renderer
	logger           logger.ILogger
}

func NewContentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	renderer *render.Renderer,
	log logger.ILogger,
) IContentService {
	return &contentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		renderer:         renderer,
		logger:           log,
	}
}

func (s *contentService) ListByCourse(ctx context.Context, courseId uuid.UUID) ([]*dto.ContentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: courseId})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, serverutils.ErrNotFound("course not found")
	}

	items, err := uow.ContentRepository().FindAll(ctx,
		specification.ByCourseID{CourseID: courseId},
		specification.OrderByPosition{},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ContentResponse, 0, len(items))
	for _, c := range items {
		res = append(res, s.toResponse(c))
	}
	return res, nil
}

func (s *contentService) Get(ctx context.Context, id uuid.UUID) (*dto.ContentResponse, error) {
	content, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(content), nil
}

func (s *contentService) find(ctx context.Context, id uuid.UUID) (*entity.Content, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	content, err := uow.ContentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, serverutils.ErrNotFound("content not found")
	}
	return content, nil
}

func (s *contentService) Create(ctx context.Context, req *dto.CreateContentRequest) (*dto.ContentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: req.CourseId})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, serverutils.ErrNotFound("course not found")
	}

	body, outline, err := normalizeMarkup(req.Content)
	if err != nil {
		return nil, err
	}

	content := &entity.Content{
		Id:        uuid.New(),
		CourseId:  req.CourseId,
		Title:     req.Title,
		Body:      body,
		Outline:   outline,
		Order:     req.Order,
		CreatedAt: time.Now(),
	}
	if err := uow.ContentRepository().Create(ctx, content); err != nil {
		return nil, err
	}

	s.announce(ctx, content.Id)
	return s.toResponse(content), nil
}

func (s *contentService) Update(ctx context.Context, req *dto.UpdateContentRequest) (*dto.ContentResponse, error) {
	content, err := s.find(ctx, req.Id)
	if err != nil {
		return nil, err
	}

	bodyChanged := false
	if req.Title != nil {
		content.Title = *req.Title
	}
	if req.Order != nil {
		content.Order = *req.Order
	}
	if req.Content != nil {
		body, outline, err := normalizeMarkup(*req.Content)
		if err != nil {
			return nil, err
		}
		bodyChanged = body != content.Body
		content.Body = body
		content.Outline = outline
		if bodyChanged {
			content.Highlighted = false
		}
	}
	now := time.Now()
	content.UpdatedAt = &now

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentRepository().Update(ctx, content); err != nil {
		return nil, err
	}

	if bodyChanged {
		s.announce(ctx, content.Id)
	}
	return s.toResponse(content), nil
}

func (s *contentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ContentRepository().Delete(ctx, id)
}

// announce queues the lesson for deferred highlighting. The write already
// succeeded, so a failed publish only delays highlighting until display time.
func (s *contentService) announce(ctx context.Context, id uuid.UUID) {
	payload, err := json.Marshal(dto.ContentSavedMessage{ContentId: id})
	if err == nil {
		err = s.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Warn("CONTENT", "Content saved message not published", map[string]interface{}{
			"content_id": id.String(),
			"error":      err.Error(),
		})
	}
}

func (s *contentService) toResponse(c *entity.Content) *dto.ContentResponse {
	body := c.Body
	if s.renderer != nil {
		body = s.renderer.Render(body)
	}
	outline := c.Outline
	if outline == nil {
		outline = []richtext.OutlineEntry{}
	}
	return &dto.ContentResponse{
		Id:          c.Id,
		CourseId:    c.CourseId,
		Title:       c.Title,
		Content:     body,
		Order:       c.Order,
		Outline:     outline,
		Highlighted: c.Highlighted,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// normalizeMarkup canonicalizes editor output so stored markup always
// round-trips through the editor unchanged.
func normalizeMarkup(markup string) (string, []richtext.OutlineEntry, error) {
	doc, err := richtext.Parse(markup)
	if err != nil {
		return "", nil, serverutils.ErrBadRequest("content is not valid markup")
	}
	return doc.Serialize(), doc.Outline(), nil
}
