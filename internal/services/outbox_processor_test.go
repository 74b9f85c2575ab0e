package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/internal/infrastructure/mailer"
	"github.com/fastygo/taskdesk/internal/infrastructure/outbox"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type offline struct{}

func (offline) IsOnline() bool { return false }

func openOutbox(t *testing.T) *outbox.Store {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNotifierAndDrain(t *testing.T) {
	store := openOutbox(t)
	notifier := NewNotifier(store, "https://app.test", nil)
	m := &fakeMailer{}
	processor := NewOutboxProcessor(store, m, nil, nil, ProcessorConfig{})

	user := domain.User{ID: "u1", Username: "dana", Email: "dana@example.com"}
	require.NoError(t, notifier.NotifyRoleUpgrade(context.Background(), user, domain.RolePremium))

	due := time.Now().Add(-time.Hour)
	require.NoError(t, notifier.NotifyOverdueTask(context.Background(), user, domain.Task{ID: "t1", Title: "Pay rent", DueDate: &due}))

	result, err := processor.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Sent: 2}, result)
	require.Len(t, m.sent, 2)
	assert.Equal(t, "Your TaskDesk account is now Premium", m.sent[0].Subject, "role upgrades are high priority")
	assert.Equal(t, "Overdue: Pay rent", m.sent[1].Subject)
	assert.Zero(t, processor.Size())
}

func TestDrain_RetriesThenDrops(t *testing.T) {
	store := openOutbox(t)
	notifier := NewNotifier(store, "", nil)
	m := &fakeMailer{err: errors.New("provider down")}
	processor := NewOutboxProcessor(store, m, nil, nil, ProcessorConfig{MaxRetries: 2, RetryBase: time.Minute})
	now := time.Now().Add(time.Second)
	processor.now = func() time.Time { return now }

	require.NoError(t, notifier.NotifyRoleUpgrade(context.Background(), domain.User{Email: "e@example.com"}, domain.RoleAdmin))

	result, err := processor.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Retried: 1}, result)
	assert.Equal(t, 1, processor.Size())

	result, err = processor.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainResult{}, result, "item is not due until the backoff elapses")

	now = now.Add(2 * time.Minute)
	result, err = processor.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Dropped: 1}, result)
	assert.Zero(t, processor.Size())
}

func TestDrain_SkipsWhenOffline(t *testing.T) {
	store := openOutbox(t)
	require.NoError(t, NewNotifier(store, "", nil).NotifyRoleUpgrade(context.Background(), domain.User{Email: "x@example.com"}, domain.RoleAdmin))

	processor := NewOutboxProcessor(store, &fakeMailer{}, offline{}, nil, ProcessorConfig{})
	result, err := processor.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainResult{}, result)
	assert.Equal(t, 1, processor.Size())
}

func TestBackoff(t *testing.T) {
	p := NewOutboxProcessor(nil, nil, nil, nil, ProcessorConfig{RetryBase: time.Minute, MaxBackoff: 5 * time.Minute})
	assert.Equal(t, time.Minute, p.backoff(0))
	assert.Equal(t, 2*time.Minute, p.backoff(1))
	assert.Equal(t, 4*time.Minute, p.backoff(2))
	assert.Equal(t, 5*time.Minute, p.backoff(3))
}

func TestScheduler_RejectsSubSecondInterval(t *testing.T) {
	s := NewScheduler(nil)
	assert.Error(t, s.Every("fast", time.Millisecond, func(ctx context.Context) error { return nil }))
	require.NoError(t, s.Every("drain", time.Minute, func(ctx context.Context) error { return nil }))
	s.Start()
	require.NoError(t, s.Stop(context.Background()))
}
