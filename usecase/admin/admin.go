package admin

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/pkg/logger"
	"github.com/fastygo/taskdesk/repository"
	"github.com/fastygo/taskdesk/usecase"
)

type UseCase struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	tx       repository.Transactor
	sessions repository.SessionRepository
	notifier usecase.RoleNotifier
	events   usecase.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*UseCase)

// WithClock overrides the clock used for the stats window.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// WithEvents attaches a domain event publisher.
func WithEvents(events usecase.EventPublisher) Option {
	return func(uc *UseCase) {
		uc.events = events
	}
}

// WithSessions revokes a deleted user's sessions.
func WithSessions(sessions repository.SessionRepository) Option {
	return func(uc *UseCase) {
		uc.sessions = sessions
	}
}

func New(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	tx repository.Transactor,
	notifier usecase.RoleNotifier,
	logger *zap.Logger,
	opts ...Option,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		users:    users,
		tasks:    tasks,
		tx:       tx,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) ListUsers(ctx context.Context, q UserQuery) (*UserList, error) {
	page, err := domain.NewPage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	if q.Role != "" {
		if _, err := domain.ParseRole(q.Role); err != nil {
			return nil, err
		}
	}

	filter := repository.UserFilter{
		Role:   q.Role,
		Search: q.Search,
		Skip:   page.Skip(),
		Limit:  page.Limit,
	}
	users, err := uc.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.users.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	return &UserList{Users: users, Pagination: domain.NewPagination(total, page)}, nil
}

func (uc *UseCase) GetUser(ctx context.Context, id string) (*UserDetails, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""

	stats, err := uc.tasks.CountByStatus(ctx, repository.TaskFilter{UserID: user.ID})
	if err != nil {
		return nil, err
	}
	return &UserDetails{User: user, TaskStats: nonNilGroups(stats)}, nil
}

// ChangeRole sets targetID's role. The role write is committed before any notification is attempted,
// and a failing notifier never fails the call.
func (uc *UseCase) ChangeRole(ctx context.Context, actorID, targetID, role string) (*RoleChange, error) {
	newRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	target, err := uc.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, domain.ErrSelfRoleChange
	}

	oldRole, err := uc.users.UpdateRole(ctx, target.ID, newRole)
	if err != nil {
		return nil, err
	}

	log := logger.WithRequestID(ctx, uc.logger)
	log.Info("user role changed",
		zap.String("actor_id", actorID),
		zap.String("user_id", target.ID),
		zap.String("old_role", string(oldRole)),
		zap.String("new_role", string(newRole)))

	if newRole.IsUpgrade() && oldRole != newRole && uc.notifier != nil {
		if err := uc.notifier.NotifyRoleUpgrade(ctx, *target, newRole); err != nil {
			log.Error("role upgrade notification not queued", zap.String("user_id", target.ID), zap.Error(err))
		}
	}

	uc.publish(ctx, domain.NewEvent(domain.EventUserRoleChanged, target.ID, actorID, RoleChange{
		UserID:   target.ID,
		Username: target.Username,
		OldRole:  oldRole,
		NewRole:  newRole,
	}))

	return &RoleChange{
		UserID:   target.ID,
		Username: target.Username,
		OldRole:  oldRole,
		NewRole:  newRole,
	}, nil
}

// DeleteUser removes targetID and every task it owns. Comments written by the user are kept.
func (uc *UseCase) DeleteUser(ctx context.Context, actorID, targetID string) (*UserDeletion, error) {
	target, err := uc.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, domain.ErrSelfDelete
	}

	var deleted int64
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := uc.tasks.DeleteByUser(ctx, target.ID)
		if err != nil {
			return err
		}
		deleted = n
		return uc.users.Delete(ctx, target.ID)
	})
	if err != nil {
		return nil, err
	}

	log := logger.WithRequestID(ctx, uc.logger)
	log.Info("user deleted",
		zap.String("actor_id", actorID),
		zap.String("user_id", target.ID),
		zap.Int64("deleted_tasks", deleted))

	if uc.sessions != nil {
		if revoked, err := uc.sessions.DeleteByUser(ctx, target.ID); err != nil {
			log.Error("sessions of deleted user not revoked", zap.String("user_id", target.ID), zap.Error(err))
		} else if revoked > 0 {
			log.Info("sessions revoked", zap.String("user_id", target.ID), zap.Int64("count", revoked))
		}
	}

	result := &UserDeletion{DeletedUser: target.Username, DeletedTasksCount: deleted}
	uc.publish(ctx, domain.NewEvent(domain.EventUserDeleted, target.ID, actorID, result))
	return result, nil
}

func (uc *UseCase) ListTasks(ctx context.Context, q TaskQuery) (*TaskList, error) {
	page, err := domain.NewPage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	if q.Status != "" {
		if _, err := domain.ParseTaskStatus(q.Status); err != nil {
			return nil, err
		}
	}

	filter := repository.TaskFilter{
		UserID:   q.UserID,
		Status:   q.Status,
		Priority: q.Priority,
		Skip:     page.Skip(),
		Limit:    page.Limit,
	}
	tasks, err := uc.tasks.ListWithOwners(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.tasks.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &TaskList{Tasks: tasks, Pagination: domain.NewPagination(total, page)}, nil
}

// DeleteTask removes any task regardless of owner.
func (uc *UseCase) DeleteTask(ctx context.Context, actorID, id string) (*TaskDeletion, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.tasks.Delete(ctx, task.ID); err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, uc.logger).Info("task deleted by administrator",
		zap.String("actor_id", actorID),
		zap.String("task_id", task.ID),
		zap.String("owner_id", task.UserID))

	result := &TaskDeletion{DeletedTask: task.Title, TaskID: task.ID}
	uc.publish(ctx, domain.NewEvent(domain.EventTaskDeleted, task.ID, actorID, result))
	return result, nil
}

func (uc *UseCase) SystemStats(ctx context.Context) (*domain.SystemStats, error) {
	now := uc.now().UTC()
	since := now.Add(-domain.RecentWindow)

	stats := &domain.SystemStats{WindowStart: since, GeneratedAt: now}
	var err error

	if stats.Users.Total, err = uc.users.Count(ctx, repository.UserFilter{}); err != nil {
		return nil, err
	}
	if stats.Users.ByRole, err = uc.users.CountByRole(ctx); err != nil {
		return nil, err
	}
	if stats.Users.RecentRegistrations, err = uc.users.CountCreatedSince(ctx, since); err != nil {
		return nil, err
	}
	if stats.Tasks.Total, err = uc.tasks.Count(ctx, repository.TaskFilter{}); err != nil {
		return nil, err
	}
	if stats.Tasks.ByStatus, err = uc.tasks.CountByStatus(ctx, repository.TaskFilter{}); err != nil {
		return nil, err
	}
	if stats.Tasks.ByPriority, err = uc.tasks.CountByPriority(ctx); err != nil {
		return nil, err
	}
	if stats.Tasks.RecentlyCreated, err = uc.tasks.CountCreatedSince(ctx, since); err != nil {
		return nil, err
	}
	if stats.TopUsers, err = uc.tasks.TopOwners(ctx, domain.TopUsersLimit); err != nil {
		return nil, err
	}

	stats.Users.ByRole = nonNilGroups(stats.Users.ByRole)
	stats.Tasks.ByStatus = nonNilGroups(stats.Tasks.ByStatus)
	stats.Tasks.ByPriority = nonNilGroups(stats.Tasks.ByPriority)
	if stats.TopUsers == nil {
		stats.TopUsers = []domain.TopUser{}
	}
	return stats, nil
}

func (uc *UseCase) publish(ctx context.Context, event domain.Event) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		logger.WithRequestID(ctx, uc.logger).Warn("event publish failed",
			zap.String("event", event.Name),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
	}
}

func nonNilGroups(groups []domain.GroupCount) []domain.GroupCount {
	if groups == nil {
		return []domain.GroupCount{}
	}
	return groups
}
