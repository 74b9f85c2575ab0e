package task

import (
	"time"

	"github.com/fastygo/taskdesk/domain"
)

type CreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	AssignedTo  string
}

// UpdateInput carries a partial task update. Nil fields are left untouched;
// ClearDueDate removes an existing due date.
type UpdateInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
	AssignedTo   *string
}

type ListQuery struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

type TaskList struct {
	Tasks      []domain.Task
	Pagination domain.Pagination
}
