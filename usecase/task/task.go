package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/pkg/logger"
	"github.com/fastygo/taskdesk/repository"
	"github.com/fastygo/taskdesk/usecase"
)

type UseCase struct {
	tasks    repository.TaskRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	events   usecase.EventPublisher
	logger   *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	events usecase.EventPublisher,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		comments: comments,
		users:    users,
		events:   events,
		logger:   logger,
	}
}

func (uc *UseCase) List(ctx context.Context, userID string, q ListQuery) (*TaskList, error) {
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
		UserID:   userID,
		Status:   q.Status,
		Priority: q.Priority,
		Skip:     page.Skip(),
		Limit:    page.Limit,
	}
	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.tasks.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return &TaskList{Tasks: tasks, Pagination: domain.NewPagination(total, page)}, nil
}

// Get returns a task visible to userID: owned by or assigned to them.
func (uc *UseCase) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID && task.AssignedTo != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (uc *UseCase) Create(ctx context.Context, userID string, in CreateInput) (*domain.Task, error) {
	task := &domain.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.TaskStatus(in.Status),
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		AssignedTo:  in.AssignedTo,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := uc.checkAssignee(ctx, task.AssignedTo); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	if uc.events != nil {
		event := domain.NewEvent(domain.EventTaskCreated, created.ID, userID, created)
		if err := uc.events.Publish(ctx, event); err != nil {
			logger.WithRequestID(ctx, uc.logger).Warn("event publish failed",
				zap.String("event", event.Name), zap.Error(err))
		}
	}
	return created, nil
}

// Update applies in to a task owned by userID. A changed due date re-arms the overdue reminder.
func (uc *UseCase) Update(ctx context.Context, userID, id string, in UpdateInput) (*domain.Task, error) {
	task, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = domain.TaskStatus(*in.Status)
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.AssignedTo != nil {
		task.AssignedTo = *in.AssignedTo
		if err := uc.checkAssignee(ctx, task.AssignedTo); err != nil {
			return nil, err
		}
	}
	switch {
	case in.ClearDueDate:
		task.DueDate = nil
		task.OverdueEmailSent = false
	case in.DueDate != nil:
		if task.DueDate == nil || !task.DueDate.Equal(*in.DueDate) {
			task.OverdueEmailSent = false
		}
		due := *in.DueDate
		task.DueDate = &due
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	task, err := uc.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, task.ID); err != nil {
		return err
	}
	if uc.events != nil {
		event := domain.NewEvent(domain.EventTaskDeleted, task.ID, userID, map[string]string{"title": task.Title})
		if err := uc.events.Publish(ctx, event); err != nil {
			logger.WithRequestID(ctx, uc.logger).Warn("event publish failed",
				zap.String("event", event.Name), zap.Error(err))
		}
	}
	return nil
}

func (uc *UseCase) AddComment(ctx context.Context, userID, taskID, text string) (*domain.Comment, error) {
	task, err := uc.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	comment := &domain.Comment{TaskID: task.ID, AuthorID: userID, Text: text}
	if err := comment.Validate(); err != nil {
		return nil, err
	}
	return uc.comments.Create(ctx, comment)
}

// ListComments returns a task's comments oldest first.
func (uc *UseCase) ListComments(ctx context.Context, userID, taskID string) ([]domain.Comment, error) {
	task, err := uc.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	comments, err := uc.comments.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

func (uc *UseCase) owned(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (uc *UseCase) checkAssignee(ctx context.Context, assignee string) error {
	if assignee == "" || uc.users == nil {
		return nil
	}
	if _, err := uc.users.GetByID(ctx, assignee); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.NewError(domain.ErrCodeInvalid, "assignee does not exist")
		}
		return err
	}
	return nil
}
