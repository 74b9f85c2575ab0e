package domain

import (
	"strings"
	"time"
)

// Comment is a note left on a task by a user.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	AuthorID  string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Comment) Validate() error {
	if c == nil {
		return ErrInvalidPayload
	}
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return NewError(ErrCodeInvalid, "comment text is required")
	}
	if c.TaskID == "" || c.AuthorID == "" {
		return ErrInvalidPayload
	}
	return nil
}
