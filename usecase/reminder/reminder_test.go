package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository/memory"
)

type stubNotifier struct {
	sent []string
	err  error
}

func (n *stubNotifier) NotifyOverdueTask(ctx context.Context, user domain.User, task domain.Task) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, task.ID)
	return nil
}

func seed(t *testing.T, store *memory.Store, name string, reminders bool) *domain.User {
	t.Helper()
	user := &domain.User{Username: name, Email: name + "@example.com", Role: domain.RoleUser}
	require.NoError(t, store.Users().Create(context.Background(), user))
	if !reminders {
		prefs := domain.DefaultPreferences()
		prefs.DeadlineReminders = false
		require.NoError(t, store.Users().SetPreferences(context.Background(), user.ID, prefs))
	}
	return user
}

func addTask(t *testing.T, store *memory.Store, owner string, due time.Time, status domain.TaskStatus) *domain.Task {
	t.Helper()
	task, err := store.Tasks().Create(context.Background(), &domain.Task{
		UserID:  owner,
		Title:   "task for " + owner,
		Status:  status,
		DueDate: &due,
	})
	require.NoError(t, err)
	return task
}

func TestSweep(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	eager := seed(t, store, "eager", true)
	quiet := seed(t, store, "quiet", false)

	overdue := addTask(t, store, eager.ID, now.Add(-time.Hour), domain.StatusTodo)
	addTask(t, store, eager.ID, now.Add(time.Hour), domain.StatusTodo)
	addTask(t, store, eager.ID, now.Add(-time.Hour), domain.StatusDone)
	muted := addTask(t, store, quiet.ID, now.Add(-2*time.Hour), domain.StatusInProgress)

	notifier := &stubNotifier{}
	uc := New(store.Tasks(), store.Users(), notifier, 10, nil)

	result, err := uc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 2, Notified: 1, Skipped: 1}, result)
	assert.Equal(t, []string{overdue.ID}, notifier.sent)

	for _, id := range []string{overdue.ID, muted.ID} {
		task, err := store.Tasks().GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, task.OverdueEmailSent)
	}

	result, err = uc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
	assert.Len(t, notifier.sent, 1)
}

func TestSweep_NotifierFailureLeavesTaskPending(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	owner := seed(t, store, "owner", true)
	task := addTask(t, store, owner.ID, now.Add(-time.Minute), domain.StatusTodo)

	uc := New(store.Tasks(), store.Users(), &stubNotifier{err: errors.New("outbox closed")}, 0, nil)
	result, err := uc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	stored, err := store.Tasks().GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.False(t, stored.OverdueEmailSent)
}
