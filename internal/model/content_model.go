package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Content struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Course      *Course        `gorm:"foreignKey:CourseId;constraint:OnDelete:CASCADE"`
	Title       string         `gorm:"type:varchar(255);not null"`
	Body        string         `gorm:"column:content;type:text;not null"`
	Outline     datatypes.JSON `gorm:"type:jsonb"`
	Position    int            `gorm:"column:order;not null;index"`
	Highlighted bool           `gorm:"default:false"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Content) TableName() string {
	return "content"
}
