package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
	"github.com/fastygo/taskdesk/repository/memory"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []domain.Role
	err   error
}

func (n *recordingNotifier) NotifyRoleUpgrade(ctx context.Context, user domain.User, role domain.Role) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, role)
	return n.err
}

type recordingPublisher struct {
	events []domain.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	store     *memory.Store
	notifier  *recordingNotifier
	publisher *recordingPublisher
	uc        *UseCase
	admin     *domain.User
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore(memory.WithClock(func() time.Time { return now }))
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	uc := New(store.Users(), store.Tasks(), store, notifier, nil,
		WithClock(func() time.Time { return now }),
		WithEvents(publisher),
		WithSessions(store.Sessions()))

	f := &fixture{store: store, notifier: notifier, publisher: publisher, uc: uc, now: now}
	f.admin = f.addUser(t, "root", domain.RoleAdmin)
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func (f *fixture) addTask(t *testing.T, owner *domain.User, title string, status domain.TaskStatus) *domain.Task {
	t.Helper()
	task, err := f.store.Tasks().Create(context.Background(), &domain.Task{
		UserID:   owner.ID,
		Title:    title,
		Status:   status,
		Priority: "medium",
	})
	require.NoError(t, err)
	return task
}

func TestChangeRole_UpgradeNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "alice", domain.RoleUser)

	result, err := f.uc.ChangeRole(context.Background(), f.admin.ID, u.ID, "premium")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, result.OldRole)
	assert.Equal(t, domain.RolePremium, result.NewRole)
	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, []domain.Role{domain.RolePremium}, f.notifier.calls)

	stored, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePremium, stored.Role)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.EventUserRoleChanged, f.publisher.events[0].Name)
}

func TestChangeRole_SameRoleDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "bob", domain.RolePremium)

	result, err := f.uc.ChangeRole(context.Background(), f.admin.ID, u.ID, "premium")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePremium, result.OldRole)
	assert.Empty(t, f.notifier.calls)
}

func TestChangeRole_DowngradeDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "carol", domain.RoleAdmin)

	_, err := f.uc.ChangeRole(context.Background(), f.admin.ID, u.ID, "user")
	require.NoError(t, err)
	assert.Empty(t, f.notifier.calls)
}

func TestChangeRole_NotifierFailureKeepsRole(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	u := f.addUser(t, "dave", domain.RoleUser)

	result, err := f.uc.ChangeRole(context.Background(), f.admin.ID, u.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, result.NewRole)

	stored, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestChangeRole_Errors(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "erin", domain.RoleUser)

	_, err := f.uc.ChangeRole(context.Background(), f.admin.ID, u.ID, "superuser")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, "invalid role. Allowed: user, premium, admin", err.Error())

	_, err = f.uc.ChangeRole(context.Background(), f.admin.ID, "missing", "premium")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.uc.ChangeRole(context.Background(), f.admin.ID, f.admin.ID, "user")
	assert.ErrorIs(t, err, domain.ErrSelfRoleChange)

	stored, err := f.store.Users().GetByID(context.Background(), f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
	assert.Empty(t, f.notifier.calls)
}

func TestDeleteUser_CascadesTasks(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "frank", domain.RoleUser)
	other := f.addUser(t, "grace", domain.RoleUser)
	for i := 0; i < 3; i++ {
		f.addTask(t, u, fmt.Sprintf("task %d", i), domain.StatusTodo)
	}
	kept := f.addTask(t, other, "keep me", domain.StatusDone)

	_, err := f.store.Comments().Create(context.Background(), &domain.Comment{TaskID: kept.ID, AuthorID: u.ID, Text: "hi"})
	require.NoError(t, err)
	require.NoError(t, f.store.Sessions().Save(context.Background(), &domain.Session{ID: "s-frank", UserID: u.ID, ExpiresAt: f.now.Add(time.Hour)}))
	require.NoError(t, f.store.Sessions().Save(context.Background(), &domain.Session{ID: "s-grace", UserID: other.ID, ExpiresAt: f.now.Add(time.Hour)}))

	result, err := f.uc.DeleteUser(context.Background(), f.admin.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "frank", result.DeletedUser)
	assert.Equal(t, int64(3), result.DeletedTasksCount)

	_, err = f.store.Users().GetByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	remaining, err := f.store.Tasks().Count(context.Background(), repository.TaskFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Zero(t, remaining)

	_, err = f.store.Tasks().GetByID(context.Background(), kept.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.store.CountByAuthor(u.ID))

	_, err = f.store.Sessions().Get(context.Background(), "s-frank")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "sessions of the deleted user are revoked")
	_, err = f.store.Sessions().Get(context.Background(), "s-grace")
	assert.NoError(t, err)
}

func TestDeleteUser_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.DeleteUser(context.Background(), f.admin.ID, f.admin.ID)
	assert.ErrorIs(t, err, domain.ErrSelfDelete)

	_, err = f.uc.DeleteUser(context.Background(), f.admin.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetUser_IncludesTaskStats(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "heidi", domain.RoleUser)
	f.addTask(t, u, "one", domain.StatusTodo)
	f.addTask(t, u, "two", domain.StatusTodo)
	f.addTask(t, u, "three", domain.StatusDone)

	details, err := f.uc.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, details.User.PasswordHash)
	assert.ElementsMatch(t, []domain.GroupCount{
		{Key: "done", Count: 1},
		{Key: "todo", Count: 2},
	}, details.TaskStats)

	lonely := f.addUser(t, "ivan", domain.RoleUser)
	details, err = f.uc.GetUser(context.Background(), lonely.ID)
	require.NoError(t, err)
	assert.NotNil(t, details.TaskStats)
	assert.Empty(t, details.TaskStats)
}

func TestListUsers_PaginationAndSearch(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 4; i++ {
		f.addUser(t, fmt.Sprintf("member%d", i), domain.RoleUser)
	}

	list, err := f.uc.ListUsers(context.Background(), UserQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)
	assert.Equal(t, domain.Pagination{Total: 5, Page: 1, Limit: 2, Pages: 3}, list.Pagination)
	for _, u := range list.Users {
		assert.Empty(t, u.PasswordHash)
	}

	list, err = f.uc.ListUsers(context.Background(), UserQuery{Search: "MEMBER", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(4), list.Pagination.Total)

	list, err = f.uc.ListUsers(context.Background(), UserQuery{Role: "admin", Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	assert.Equal(t, f.admin.ID, list.Users[0].ID)

	_, err = f.uc.ListUsers(context.Background(), UserQuery{Page: 0, Limit: 20})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.ListUsers(context.Background(), UserQuery{Role: "root", Page: 1, Limit: 20})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestListTasks_FiltersAndOwners(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "judy", domain.RoleUser)
	f.addTask(t, u, "open", domain.StatusTodo)
	f.addTask(t, u, "closed", domain.StatusDone)

	list, err := f.uc.ListTasks(context.Background(), TaskQuery{Status: "done", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "closed", list.Tasks[0].Title)
	require.NotNil(t, list.Tasks[0].Owner)
	assert.Equal(t, "judy", list.Tasks[0].Owner.Username)

	_, err = f.uc.ListTasks(context.Background(), TaskQuery{Status: "archived", Page: 1, Limit: 50})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "ken", domain.RoleUser)
	task := f.addTask(t, u, "obsolete", domain.StatusTodo)

	result, err := f.uc.DeleteTask(context.Background(), f.admin.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskDeletion{DeletedTask: "obsolete", TaskID: task.ID}, *result)

	_, err = f.uc.DeleteTask(context.Background(), f.admin.ID, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestSystemStats_EmptyStore(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	uc := New(store.Users(), store.Tasks(), store, nil, nil, WithClock(func() time.Time { return now }))

	stats, err := uc.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Users.Total)
	assert.Zero(t, stats.Tasks.Total)
	assert.NotNil(t, stats.Users.ByRole)
	assert.Empty(t, stats.Users.ByRole)
	assert.NotNil(t, stats.Tasks.ByStatus)
	assert.NotNil(t, stats.TopUsers)
	assert.Empty(t, stats.TopUsers)
	assert.Equal(t, now.Add(-7*24*time.Hour), stats.WindowStart)
}

func TestSystemStats_CountsAndTopUsers(t *testing.T) {
	f := newFixture(t)
	heavy := f.addUser(t, "heavy", domain.RolePremium)
	light := f.addUser(t, "light", domain.RoleUser)
	for i := 0; i < 3; i++ {
		f.addTask(t, heavy, fmt.Sprintf("heavy %d", i), domain.StatusTodo)
	}
	f.addTask(t, light, "light one", domain.StatusDone)

	old := &domain.Task{UserID: light.ID, Title: "ancient", Status: domain.StatusDone, Priority: "low",
		CreatedAt: f.now.Add(-30 * 24 * time.Hour)}
	_, err := f.store.Tasks().Create(context.Background(), old)
	require.NoError(t, err)

	stats, err := f.uc.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Users.Total)
	assert.Equal(t, int64(3), stats.Users.RecentRegistrations)
	assert.Equal(t, int64(5), stats.Tasks.Total)
	assert.Equal(t, int64(4), stats.Tasks.RecentlyCreated)
	assert.ElementsMatch(t, []domain.GroupCount{
		{Key: "admin", Count: 1},
		{Key: "premium", Count: 1},
		{Key: "user", Count: 1},
	}, stats.Users.ByRole)

	require.Len(t, stats.TopUsers, 2)
	assert.Equal(t, heavy.ID, stats.TopUsers[0].UserID)
	assert.Equal(t, int64(3), stats.TopUsers[0].TaskCount)
	assert.Equal(t, "heavy", stats.TopUsers[0].Username)
	assert.Equal(t, int64(2), stats.TopUsers[1].TaskCount)
}
