package dto

import (
	"time"

	"lms-be/pkg/richtext"

	"github.com/google/uuid"
)

type CreateContentRequest struct {
	CourseId uuid.UUID `json:"-"`
	Title    string    `json:"title" validate:"required,max=255"`
	Content  string    `json:"content"`
	Order    int       `json:"order" validate:"gte=0"`
}

type UpdateContentRequest struct {
	Id      uuid.UUID `json:"-"`
	Title   *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string   `json:"content"`
	Order   *int      `json:"order" validate:"omitempty,gte=0"`
}

type ContentResponse struct {
	Id          uuid.UUID               `json:"id"`
	CourseId    uuid.UUID               `json:"course_id"`
	Title       string                  `json:"title"`
	Content     string                  `json:"content"`
	Order       int                     `json:"order"`
	Outline     []richtext.OutlineEntry `json:"outline"`
	Highlighted bool                    `json:"highlighted"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   *time.Time              `json:"updated_at"`
}

// ContentSavedMessage is published after content is written so the
// highlight consumer can post-process its code blocks.
type ContentSavedMessage struct {
	ContentId uuid.UUID `json:"content_id"`
}
