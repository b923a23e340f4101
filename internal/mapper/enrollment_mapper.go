package mapper

import (
	"lms-be/internal/entity"
	"lms-be/internal/model"
)

type EnrollmentMapper struct{}

func NewEnrollmentMapper() *EnrollmentMapper {
	return &EnrollmentMapper{}
}

func (m *EnrollmentMapper) ToEntity(e *model.Enrollment) *entity.Enrollment {
	if e == nil {
		return nil
	}
	return &entity.Enrollment{
		Id:         e.Id,
		UserId:     e.UserId,
		CourseId:   e.CourseId,
		EnrolledAt: e.EnrolledAt,
	}
}

func (m *EnrollmentMapper) ToModel(e *entity.Enrollment) *model.Enrollment {
	if e == nil {
		return nil
	}
	return &model.Enrollment{
		Id:         e.Id,
		UserId:     e.UserId,
		CourseId:   e.CourseId,
		EnrolledAt: e.EnrolledAt,
	}
}

func (m *EnrollmentMapper) ToEntities(items []*model.Enrollment) []*entity.Enrollment {
	entities := make([]*entity.Enrollment, len(items))
	for i, e := range items {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
