package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/infrastructure/mailer"
	"github.com/fastygo/taskdesk/internal/infrastructure/outbox"
	"github.com/fastygo/taskdesk/usecase"
)

// Notifier queues emails in the outbox; the OutboxProcessor delivers them.
type Notifier struct {
	store  *outbox.Store
	appURL string
	logger *zap.Logger
}

func NewNotifier(store *outbox.Store, appURL string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{store: store, appURL: appURL, logger: logger}
}

func (n *Notifier) NotifyRoleUpgrade(ctx context.Context, user domain.User, role domain.Role) error {
	item, err := outbox.NewItem(outbox.KindRoleUpgrade, user.Email, mailer.RoleUpgradeData{
		Username: user.Username,
		Role:     string(role),
		AppURL:   n.appURL,
	})
	if err != nil {
		return err
	}
	item.Priority = outbox.PriorityHigh
	return n.enqueue(item)
}

func (n *Notifier) NotifyOverdueTask(ctx context.Context, user domain.User, task domain.Task) error {
	if task.DueDate == nil {
		return domain.ErrInvalidPayload
	}
	item, err := outbox.NewItem(outbox.KindOverdueTask, user.Email, mailer.OverdueTaskData{
		Username: user.Username,
		TaskID:   task.ID,
		Title:    task.Title,
		DueDate:  *task.DueDate,
		Timezone: user.EffectivePreferences().Timezone,
		AppURL:   n.appURL,
	})
	if err != nil {
		return err
	}
	item.Priority = outbox.PriorityLow
	return n.enqueue(item)
}

func (n *Notifier) enqueue(item outbox.Item) error {
	if n == nil || n.store == nil {
		return domain.NewError(domain.ErrCodeInternal, "outbox not configured")
	}
	if err := n.store.Enqueue(item); err != nil {
		return err
	}
	n.logger.Debug("email queued", zap.String("kind", string(item.Kind)), zap.String("item_id", item.ID))
	return nil
}

var (
	_ usecase.RoleNotifier     = (*Notifier)(nil)
	_ usecase.ReminderNotifier = (*Notifier)(nil)
)
