package transport

import (
	"time"

	"github.com/fastygo/taskdesk/domain"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type TaskCreateRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority" validate:"omitempty,max=20"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  string     `json:"assignedTo"`
}

// TaskUpdateRequest is a partial update; absent fields stay unchanged. A JSON null dueDate clears it.
type TaskUpdateRequest struct {
	Title       *string      `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority" validate:"omitempty,max=20"`
	DueDate     NullableTime `json:"dueDate"`
	AssignedTo  *string      `json:"assignedTo"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// PreferencesRequest is validated by the domain so the error names the allowed values.
type PreferencesRequest struct {
	Theme                       *domain.Theme    `json:"theme"`
	Language                    *domain.Language `json:"language"`
	Timezone                    *string          `json:"timezone"`
	EmailNotifications          *bool            `json:"emailNotifications"`
	DeadlineReminders           *bool            `json:"deadlineReminders"`
	TaskAssignmentNotifications *bool            `json:"taskAssignmentNotifications"`
	WeeklyDigest                *bool            `json:"weeklyDigest"`
}

func (r PreferencesRequest) Patch() domain.PreferencesPatch {
	return domain.PreferencesPatch{
		Theme:                       r.Theme,
		Language:                    r.Language,
		Timezone:                    r.Timezone,
		EmailNotifications:          r.EmailNotifications,
		DeadlineReminders:           r.DeadlineReminders,
		TaskAssignmentNotifications: r.TaskAssignmentNotifications,
		WeeklyDigest:                r.WeeklyDigest,
	}
}

// NullableTime distinguishes an absent field from an explicit null.
type NullableTime struct {
	Set   bool
	Value *time.Time
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	n.Value = &t
	return nil
}
