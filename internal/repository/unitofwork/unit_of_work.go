package unitofwork

import (
	"context"

	"lms-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	CourseRepository() contract.CourseRepository
	ContentRepository() contract.ContentRepository
	EnrollmentRepository() contract.EnrollmentRepository
}
