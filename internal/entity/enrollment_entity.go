package entity

import (
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	CourseId   uuid.UUID
	EnrolledAt time.Time
}

type EnrolledCourse struct {
	Course     Course
	EnrolledAt time.Time
}
