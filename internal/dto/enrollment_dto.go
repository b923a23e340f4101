package dto

import (
	"time"

	"github.com/google/uuid"
)

type EnrollRequest struct {
	CourseId uuid.UUID `json:"course_id" validate:"required"`
}

type EnrollmentResponse struct {
	Id         uuid.UUID `json:"id"`
	UserId     uuid.UUID `json:"user_id"`
	CourseId   uuid.UUID `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

type EnrolledCourseResponse struct {
	Course     CourseResponse `json:"course"`
	EnrolledAt time.Time      `json:"enrolled_at"`
}
