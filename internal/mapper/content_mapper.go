package mapper

import (
	"encoding/json"
	"time"

	"lms-be/internal/entity"
	"lms-be/internal/model"
	"lms-be/pkg/richtext"

	"gorm.io/datatypes"
)

type ContentMapper struct{}

func NewContentMapper() *ContentMapper {
	return &ContentMapper{}
}

func (m *ContentMapper) ToEntity(c *model.Content) *entity.Content {
	if c == nil {
		return nil
	}
	var outline []richtext.OutlineEntry
	if len(c.Outline) > 0 {
		// A malformed outline is rebuilt on the next save.
		_ = json.Unmarshal(c.Outline, &outline)
	}
	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}
	return &entity.Content{
		Id:          c.Id,
		CourseId:    c.CourseId,
		Title:       c.Title,
		Body:        c.Body,
		Outline:     outline,
		Order:       c.Position,
		Highlighted: c.Highlighted,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ContentMapper) ToModel(c *entity.Content) *model.Content {
	if c == nil {
		return nil
	}
	var outline datatypes.JSON
	if c.Outline != nil {
		if raw, err := json.Marshal(c.Outline); err == nil {
			outline = datatypes.JSON(raw)
		}
	}
	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}
	return &model.Content{
		Id:          c.Id,
		CourseId:    c.CourseId,
		Title:       c.Title,
		Body:        c.Body,
		Outline:     outline,
		Position:    c.Order,
		Highlighted: c.Highlighted,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ContentMapper) ToEntities(items []*model.Content) []*entity.Content {
	entities := make([]*entity.Content, len(items))
	for i, c := range items {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
