package entity

import (
	"time"

	"lms-be/pkg/richtext"

	"github.com/google/uuid"
)

// Content is one ordered lesson of a course. Body holds the editor's
// serialized markup.
type Content struct {
	Id          uuid.UUID
	CourseId    uuid.UUID
	Title       string
	Body        string
	Outline     []richtext.OutlineEntry
	Order       int
	Highlighted bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
