package dto

import (
	"time"

	"github.com/google/uuid"

	"research-tutor-be/pkg/workflow"
)

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type SessionSummaryResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Worldview    string     `json:"worldview,omitempty"`
	ResolvedPath string     `json:"resolved_path"`
	ActiveStep   int        `json:"active_step"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ShowSessionResponse struct {
	Id                uuid.UUID              `json:"id"`
	Title             string                 `json:"title"`
	Worldview         string                 `json:"worldview,omitempty"`
	ResolvedPath      string                 `json:"resolved_path"`
	ChosenMethodology string                 `json:"chosen_methodology,omitempty"`
	ActiveStep        int                    `json:"active_step"`
	StepData          map[int]map[string]any `json:"step_data"`
	CompletedSteps    []int                  `json:"completed_steps"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         *time.Time             `json:"updated_at"`
}

type SetWorldviewRequest struct {
	SessionId   uuid.UUID `json:"session_id" validate:"required"`
	WorldviewId string    `json:"worldview_id" validate:"required"`
}

type SetWorldviewResponse struct {
	SessionId    uuid.UUID `json:"session_id"`
	Worldview    string    `json:"worldview"`
	ResolvedPath string    `json:"resolved_path"`
}

type SetMethodologyRequest struct {
	SessionId   uuid.UUID `json:"session_id" validate:"required"`
	Methodology string    `json:"methodology" validate:"required"`
}

type SetMethodologyResponse struct {
	SessionId         uuid.UUID `json:"session_id"`
	ChosenMethodology string    `json:"chosen_methodology"`
}

type AdvanceStepRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Step      int       `json:"step" validate:"required,min=1,max=9"`
}

type AdvanceStepResponse struct {
	SessionId  uuid.UUID `json:"session_id"`
	ActiveStep int       `json:"active_step"`
}

type SaveStepDataRequest struct {
	SessionId uuid.UUID      `json:"session_id" validate:"required"`
	Data      map[string]any `json:"data" validate:"required"`
}

type StepDataResponse struct {
	SessionId uuid.UUID      `json:"session_id"`
	Step      int            `json:"step"`
	Data      map[string]any `json:"data"`
}

type StepConfigResponse struct {
	Step       int            `json:"step"`
	Locked     bool           `json:"locked"`
	Directions string         `json:"directions,omitempty"`
	Config     *StepConfigDTO `json:"config,omitempty"`
}

type StepConfigDTO struct {
	Step       int            `json:"step"`
	Path       string         `json:"path"`
	Title      string         `json:"title"`
	Directions string         `json:"directions"`
	Schema     map[string]any `json:"schema"`
}

type OptionDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SchemaToMap flattens the sealed schema union into its wire shape, keyed by
// field_type.
func SchemaToMap(s workflow.Schema) map[string]any {
	switch t := s.(type) {
	case workflow.SingleSelect:
		return map[string]any{
			"field_type": t.FieldType(),
			"key":        t.Key,
			"options":    optionDTOs(t.Options),
		}
	case workflow.MultiSelect:
		return map[string]any{
			"field_type": t.FieldType(),
			"key":        t.Key,
			"options":    optionDTOs(t.Options),
		}
	case workflow.Fields:
		items := make([]map[string]any, len(t.Items))
		for i, f := range t.Items {
			items[i] = map[string]any{
				"key":   f.Key,
				"label": f.Label,
				"kind":  f.Kind,
			}
		}
		return map[string]any{
			"field_type": t.FieldType(),
			"fields":     items,
		}
	case workflow.MethodologyDecision:
		return map[string]any{
			"field_type":   t.FieldType(),
			"quantitative": optionDTOs(t.Quantitative),
			"qualitative":  optionDTOs(t.Qualitative),
		}
	default:
		return nil
	}
}

func optionDTOs(opts []workflow.Option) []OptionDTO {
	out := make([]OptionDTO, len(opts))
	for i, o := range opts {
		out[i] = OptionDTO{Value: o.Value, Label: o.Label}
	}
	return out
}
