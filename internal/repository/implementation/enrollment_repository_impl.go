package implementation

import (
	"context"
	"errors"

	"lms-be/internal/entity"
	"lms-be/internal/mapper"
	"lms-be/internal/model"
	"lms-be/internal/repository/contract"
	"lms-be/internal/repository/scope"
	"lms-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentRepositoryImpl struct {
	db           *gorm.DB
	mapper       *mapper.EnrollmentMapper
	courseMapper *mapper.CourseMapper
}

func NewEnrollmentRepository(db *gorm.DB) contract.EnrollmentRepository {
	return &EnrollmentRepositoryImpl{
		db:           db,
		mapper:       mapper.NewEnrollmentMapper(),
		courseMapper: mapper.NewCourseMapper(),
	}
}

func (r *EnrollmentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EnrollmentRepositoryImpl) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	m := r.mapper.ToModel(enrollment)
	if err := r.db.WithContext(ctx).Omit("User", "Course").Create(m).Error; err != nil {
		return err
	}
	*enrollment = *r.mapper.ToEntity(m)
	return nil
}

func (r *EnrollmentRepositoryImpl) DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("course_id = ?", courseId).Delete(&model.Enrollment{}).Error
}

func (r *EnrollmentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Enrollment, error) {
	var m model.Enrollment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EnrollmentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Enrollment, error) {
	var models []*model.Enrollment
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EnrollmentRepositoryImpl) FindCoursesByUser(ctx context.Context, userId uuid.UUID) ([]*entity.EnrolledCourse, error) {
	var models []*model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userId).
		Scopes(scope.OrderByEnrolledDesc).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	result := make([]*entity.EnrolledCourse, 0, len(models))
	for _, m := range models {
		if m.Course == nil {
			continue
		}
		result = append(result, &entity.EnrolledCourse{
			Course:     *r.courseMapper.ToEntity(m.Course),
			EnrolledAt: m.EnrolledAt,
		})
	}
	return result, nil
}
