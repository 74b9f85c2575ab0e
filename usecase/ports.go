package usecase

import (
	"context"

	"github.com/fastygo/taskdesk/domain"
)

// RoleNotifier delivers role-upgrade notices. Implementations must not block on delivery;
// callers treat a returned error as a logging concern only.
type RoleNotifier interface {
	NotifyRoleUpgrade(ctx context.Context, user domain.User, role domain.Role) error
}

// ReminderNotifier delivers overdue-task reminders.
type ReminderNotifier interface {
	NotifyOverdueTask(ctx context.Context, user domain.User, task domain.Task) error
}

// EventPublisher fans domain events out to other services.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
