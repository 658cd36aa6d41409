package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/model"
	"research-tutor-be/pkg/workflow"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	stepData := map[int]map[string]any{}
	if len(s.StepData) > 0 {
		// Corrupt step data would make the whole session unreadable, so a
		// decode failure falls back to an empty map instead of erroring.
		_ = json.Unmarshal(s.StepData, &stepData)
	}

	return &entity.Session{
		Id:                s.Id,
		OwnerRef:          s.OwnerRef,
		Title:             s.Title,
		Worldview:         workflow.Worldview(s.Worldview),
		ChosenMethodology: workflow.Methodology(s.ChosenMethodology),
		ActiveStep:        s.ActiveStep,
		StepData:          stepData,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
		IsDeleted:         s.DeletedAt.Valid,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	stepData := s.StepData
	if stepData == nil {
		stepData = map[int]map[string]any{}
	}
	raw, _ := json.Marshal(stepData)

	return &model.Session{
		Id:                s.Id,
		OwnerRef:          s.OwnerRef,
		Title:             s.Title,
		Worldview:         string(s.Worldview),
		ChosenMethodology: string(s.ChosenMethodology),
		ActiveStep:        s.ActiveStep,
		StepData:          raw,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
	}
}

func (m *SessionMapper) ToEntities(sessions []*model.Session) []*entity.Session {
	entities := make([]*entity.Session, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
