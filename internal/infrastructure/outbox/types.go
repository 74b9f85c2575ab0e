package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind names the message template an item renders with.
type Kind string

const (
	KindRoleUpgrade Kind = "role_upgrade"
	KindOverdueTask Kind = "overdue_task"
)

const (
	PriorityHigh   = 1
	PriorityNormal = 3
	PriorityLow    = 5
)

// Item is an outgoing email waiting for delivery.
type Item struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Recipient string          `json:"recipient"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"lastError,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	CreatedAt time.Time       `json:"createdAt"`

	key []byte
}

// NewItem marshals data into an item addressed to recipient.
func NewItem(kind Kind, recipient string, data interface{}) (Item, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Item{}, err
	}
	return Item{Kind: kind, Recipient: recipient, Data: raw}, nil
}

// Decode unmarshals the item payload into v.
func (i Item) Decode(v interface{}) error {
	return json.Unmarshal(i.Data, v)
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > PriorityLow {
		i.Priority = PriorityNormal
	}
	now := time.Now().UTC()
	if i.Timestamp.IsZero() {
		i.Timestamp = now
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = i.Timestamp
	}
}
