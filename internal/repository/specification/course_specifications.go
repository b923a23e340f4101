package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByCourseID struct {
	CourseID uuid.UUID
}

func (s ByCourseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("course_id = ?", s.CourseID)
}

type CreatedBy struct {
	UserID uuid.UUID
}

func (s CreatedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_by_id = ?", s.UserID)
}

// OrderByPosition sorts lessons by their "order" column, oldest first on ties.
type OrderByPosition struct{}

func (s OrderByPosition) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(`"order" ASC`).Order("created_at ASC")
}

type NotHighlighted struct{}

func (s NotHighlighted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("highlighted = ?", false)
}
