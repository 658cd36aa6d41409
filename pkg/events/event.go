package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "step_advanced").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Workflow event types. Subscribers see them under "events.<type>".
const (
	TypeSessionCreated    = "session_created"
	TypeWorldviewSelected = "worldview_selected"
	TypeMethodologySet    = "methodology_set"
	TypeStepAdvanced      = "step_advanced"
	TypeStepDataSaved     = "step_data_saved"
	TypeTurnFinalized     = "turn_finalized"
	TypeIndexRebuilt      = "index_rebuilt"
)

func NewSessionEvent(eventType, sessionId string, data map[string]interface{}) Event {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["session_id"] = sessionId
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
