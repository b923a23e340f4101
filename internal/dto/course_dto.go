package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCourseRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=255"`
	Description string `json:"description" form:"description" validate:"required"`
	ImageUrl    string `json:"image_url" form:"image_url"`
}

// UpdateCourseRequest is a partial update; nil fields are left unchanged.
type UpdateCourseRequest struct {
	Id          uuid.UUID `json:"-"`
	Title       *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description" validate:"omitempty,min=1"`
	ImageUrl    *string   `json:"image_url"`
}

type CourseResponse struct {
	Id          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageUrl    string     `json:"image_url"`
	CreatedById uuid.UUID  `json:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
