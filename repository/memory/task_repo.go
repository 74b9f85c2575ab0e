package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

type taskRepository struct {
	s *Store
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	task, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginate(r.sorted(filter), filter.Skip, filter.Limit), nil
}

func (r *taskRepository) ListWithOwners(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskWithOwner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	page := paginate(r.sorted(filter), filter.Skip, filter.Limit)
	out := make([]domain.TaskWithOwner, 0, len(page))
	for _, task := range page {
		item := domain.TaskWithOwner{Task: task}
		if owner, ok := r.s.users[task.UserID]; ok {
			item.Owner = &domain.TaskOwner{
				ID:       owner.ID,
				Username: owner.Username,
				Email:    owner.Email,
				Role:     owner.Role,
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *taskRepository) Count(ctx context.Context, filter repository.TaskFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.match(filter))), nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if task.ID == "" {
		task.ID = newID()
	}
	ts := r.s.stamp()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = ts
	}
	task.UpdatedAt = ts
	r.s.tasks[task.ID] = *task
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.UserID = existing.UserID
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = r.s.stamp()
	r.s.tasks[task.ID] = *task
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *taskRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, task := range r.s.tasks {
		if task.UserID == userID {
			delete(r.s.tasks, id)
			n++
		}
	}
	return n, nil
}

func (r *taskRepository) CountByStatus(ctx context.Context, filter repository.TaskFilter) ([]domain.GroupCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, task := range r.match(filter) {
		counts[string(task.Status)]++
	}
	return groupCounts(counts), nil
}

func (r *taskRepository) CountByPriority(ctx context.Context) ([]domain.GroupCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, task := range r.s.tasks {
		counts[task.Priority]++
	}
	return groupCounts(counts), nil
}

func (r *taskRepository) TopOwners(ctx context.Context, limit int) ([]domain.TopUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, task := range r.s.tasks {
		counts[task.UserID]++
	}
	ranked := make([]domain.TopUser, 0, len(counts))
	for userID, n := range counts {
		ranked = append(ranked, domain.TopUser{UserID: userID, TaskCount: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TaskCount != ranked[j].TaskCount {
			return ranked[i].TaskCount > ranked[j].TaskCount
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	out := make([]domain.TopUser, 0, len(ranked))
	for _, entry := range ranked {
		if limit > 0 && len(out) == limit {
			break
		}
		owner, ok := r.s.users[entry.UserID]
		if !ok {
			continue
		}
		entry.Username = owner.Username
		entry.Email = owner.Email
		out = append(out, entry)
	}
	return out, nil
}

func (r *taskRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, task := range r.s.tasks {
		if !task.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *taskRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Task
	for _, task := range r.s.tasks {
		if task.IsOverdue(now) && !task.OverdueEmailSent {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	return paginate(out, 0, limit), nil
}

func (r *taskRepository) MarkOverdueNotified(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task, ok := r.s.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	task.OverdueEmailSent = true
	task.UpdatedAt = r.s.stamp()
	r.s.tasks[id] = task
	return nil
}

func (r *taskRepository) match(filter repository.TaskFilter) []domain.Task {
	var out []domain.Task
	for _, task := range r.s.tasks {
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && string(task.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		out = append(out, task)
	}
	return out
}

func (r *taskRepository) sorted(filter repository.TaskFilter) []domain.Task {
	tasks := r.match(filter)
	sort.Slice(tasks, func(i, j int) bool {
		return newestFirst(tasks[i].CreatedAt, tasks[j].CreatedAt, tasks[i].ID, tasks[j].ID)
	})
	return tasks
}
