package entity

import (
	"time"

	"github.com/google/uuid"

	"research-tutor-be/pkg/workflow"
)

// Session is one learner's pass through the research-design workflow.
// Worldview and ChosenMethodology start empty and are written at most once.
type Session struct {
	Id                uuid.UUID
	OwnerRef          string
	Title             string
	Worldview         workflow.Worldview
	ChosenMethodology workflow.Methodology
	ActiveStep        int
	StepData          map[int]map[string]any
	CreatedAt         time.Time
	UpdatedAt         *time.Time
	DeletedAt         *time.Time
	IsDeleted         bool
}

// ResolvedPath is derived, never stored.
func (s *Session) ResolvedPath() workflow.Path {
	return workflow.ResolvePath(s.Worldview)
}

// View projects the session into the shape the step-config resolver consumes.
func (s *Session) View() workflow.SessionView {
	return workflow.SessionView{
		Worldview:         s.Worldview,
		ResolvedPath:      s.ResolvedPath(),
		ChosenMethodology: s.ChosenMethodology,
		ActiveStep:        s.ActiveStep,
		StepData:          s.StepData,
	}
}
