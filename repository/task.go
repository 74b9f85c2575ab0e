package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskdesk/domain"
)

type TaskFilter struct {
	UserID   string
	Status   string
	Priority string
	Skip     int
	Limit    int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	ListWithOwners(ctx context.Context, filter TaskFilter) ([]domain.TaskWithOwner, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// DeleteByUser removes every task owned by userID and reports how many were removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	CountByStatus(ctx context.Context, filter TaskFilter) ([]domain.GroupCount, error)
	CountByPriority(ctx context.Context) ([]domain.GroupCount, error)
	TopOwners(ctx context.Context, limit int) ([]domain.TopUser, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	// ListOverdue returns unfinished tasks due before now that have not been reminded yet.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Task, error)
	MarkOverdueNotified(ctx context.Context, id string) error
}
