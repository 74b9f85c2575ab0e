package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

func ParseTaskStatus(value string) (TaskStatus, error) {
	return parseEnum("status", value, TaskStatuses)
}

const MinTaskTitleLength = 3

// Task represents a user-owned activity item.
type Task struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	AssignedTo       string     `json:"assignedTo,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Status           TaskStatus `json:"status"`
	Priority         string     `json:"priority,omitempty"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	OverdueEmailSent bool       `json:"overdueEmailSent"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// IsOverdue reports an unfinished task whose due date has passed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t != nil && !t.IsCompleted() && t.DueDate != nil && t.DueDate.Before(now)
}

// Validate normalizes defaults and checks the fields enforced by the tasks collection schema.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	t.Title = strings.TrimSpace(t.Title)
	if utf8.RuneCountInString(t.Title) < MinTaskTitleLength {
		return NewError(ErrCodeInvalid, "title must be at least 3 characters long")
	}
	if t.UserID == "" {
		return NewError(ErrCodeInvalid, "task owner is required")
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if _, err := ParseTaskStatus(string(t.Status)); err != nil {
		return err
	}
	return nil
}

// TaskOwner is the slice of a User joined onto admin task listings.
type TaskOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// TaskWithOwner pairs a task with its owner; Owner is nil when the owner no longer exists.
type TaskWithOwner struct {
	Task
	Owner *TaskOwner `json:"owner"`
}
