package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
	"github.com/fastygo/taskdesk/usecase"
)

const defaultBatchSize = 100

// Result summarizes one sweep.
type Result struct {
	Scanned  int `json:"scanned"`
	Notified int `json:"notified"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type UseCase struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	notifier  usecase.ReminderNotifier
	batchSize int
	logger    *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	notifier usecase.ReminderNotifier,
	batchSize int,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &UseCase{
		tasks:     tasks,
		users:     users,
		notifier:  notifier,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Sweep queues overdue reminders for one batch of tasks and marks each handled task.
// Tasks whose owner turned deadline reminders off, or no longer exists, are marked without a reminder.
// A task whose reminder could not be queued is left unmarked for the next sweep.
func (uc *UseCase) Sweep(ctx context.Context, now time.Time) (Result, error) {
	var result Result

	tasks, err := uc.tasks.ListOverdue(ctx, now, uc.batchSize)
	if err != nil {
		return result, err
	}
	result.Scanned = len(tasks)

	owners := make(map[string]*domain.User)
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		owner, ok := owners[task.UserID]
		if !ok {
			owner, err = uc.users.GetByID(ctx, task.UserID)
			if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
				uc.logger.Warn("reminder owner lookup failed", zap.String("task_id", task.ID), zap.Error(err))
				result.Failed++
				continue
			}
			owners[task.UserID] = owner
		}

		if owner != nil && owner.EffectivePreferences().DeadlineReminders && uc.notifier != nil {
			if err := uc.notifier.NotifyOverdueTask(ctx, *owner, task); err != nil {
				uc.logger.Warn("overdue reminder not queued", zap.String("task_id", task.ID), zap.Error(err))
				result.Failed++
				continue
			}
			result.Notified++
		} else {
			result.Skipped++
		}

		if err := uc.tasks.MarkOverdueNotified(ctx, task.ID); err != nil {
			uc.logger.Warn("mark overdue notified failed", zap.String("task_id", task.ID), zap.Error(err))
		}
	}

	if result.Scanned > 0 {
		uc.logger.Info("overdue sweep completed",
			zap.Int("scanned", result.Scanned),
			zap.Int("notified", result.Notified),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}
