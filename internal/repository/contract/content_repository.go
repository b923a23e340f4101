package contract

import (
	"context"

	"lms-be/internal/entity"
	"lms-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ContentRepository interface {
	Create(ctx context.Context, content *entity.Content) error
	Update(ctx context.Context, content *entity.Content) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Content, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Content, error)
	// MarkHighlighted replaces loaded with body only while the stored markup is
	// still loaded. It reports false when the row changed or disappeared.
	MarkHighlighted(ctx context.Context, id uuid.UUID, loaded, body string) (bool, error)
}
