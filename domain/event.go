package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventUserRoleChanged = "user.role_changed"
	EventUserDeleted     = "user.deleted"
	EventTaskCreated     = "task.created"
	EventTaskDeleted     = "task.deleted"
)

// Event records a change applied to a user or task, published for downstream consumers.
type Event struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	SubjectID string            `json:"subjectId"`
	ActorID   string            `json:"actorId,omitempty"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewEvent builds an event; a payload that fails to marshal is dropped rather than blocking the event.
func NewEvent(name, subjectID, actorID string, payload interface{}) Event {
	event := Event{
		ID:        uuid.NewString(),
		Name:      name,
		SubjectID: subjectID,
		ActorID:   actorID,
		CreatedAt: time.Now().UTC(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			event.Payload = raw
		}
	}
	return event
}
