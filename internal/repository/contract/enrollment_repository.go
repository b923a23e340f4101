package contract

import (
	"context"

	"lms-be/internal/entity"
	"lms-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Enrollment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Enrollment, error)
	// FindCoursesByUser returns the enrolled courses of a user, newest enrollment first.
	FindCoursesByUser(ctx context.Context, userId uuid.UUID) ([]*entity.EnrolledCourse, error)
}
