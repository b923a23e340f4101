package entity

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	Id          uuid.UUID
	Title       string
	Description string
	ImageUrl    string
	CreatedById uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
