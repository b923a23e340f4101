package model

import (
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course"`
	User       *User     `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	CourseId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course;index"`
	Course     *Course   `gorm:"foreignKey:CourseId;constraint:OnDelete:CASCADE"`
	EnrolledAt time.Time `gorm:"autoCreateTime"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
