package outbox

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outbox.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestEnqueueOrdersByPriority(t *testing.T) {
	store, _ := openStore(t)

	low, err := NewItem(KindOverdueTask, "low@example.com", map[string]string{"task": "a"})
	require.NoError(t, err)
	low.Priority = PriorityLow
	high, err := NewItem(KindRoleUpgrade, "high@example.com", map[string]string{"role": "admin"})
	require.NoError(t, err)
	high.Priority = PriorityHigh

	require.NoError(t, store.Enqueue(low))
	require.NoError(t, store.Enqueue(high))

	items, err := store.Due(time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "high@example.com", items[0].Recipient)
	assert.Equal(t, KindOverdueTask, items[1].Kind)

	var payload map[string]string
	require.NoError(t, items[0].Decode(&payload))
	assert.Equal(t, "admin", payload["role"])
}

func TestRetryReschedulesAndAckRemoves(t *testing.T) {
	store, _ := openStore(t)
	item, err := NewItem(KindRoleUpgrade, "user@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(item))

	now := time.Now().Add(time.Second)
	items, err := store.Due(now, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.Retry(items[0], errors.New("provider unavailable"), now.Add(time.Minute)))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	items, err = store.Due(now, 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = store.Due(now.Add(2*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Attempts)
	assert.Equal(t, "provider unavailable", items[0].LastError)

	require.NoError(t, store.Ack(items[0]))
	size, err = store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestItemsSurviveReopen(t *testing.T) {
	store, path := openStore(t)
	item, err := NewItem(KindOverdueTask, "persist@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, store.Enqueue(item))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.Due(time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "persist@example.com", items[0].Recipient)
}

func TestCleanup(t *testing.T) {
	store, _ := openStore(t)
	old := Item{Kind: KindOverdueTask, Recipient: "old@example.com", CreatedAt: time.Now().Add(-96 * time.Hour)}
	fresh := Item{Kind: KindOverdueTask, Recipient: "fresh@example.com"}
	require.NoError(t, store.Enqueue(old))
	require.NoError(t, store.Enqueue(fresh))

	removed, err := store.Cleanup(time.Now().Add(-72 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestAckRequiresStoredItem(t *testing.T) {
	store, _ := openStore(t)
	assert.Error(t, store.Ack(Item{ID: "detached"}))
}
