// Package memory keeps users, tasks, comments and sessions in process memory.
// It backs DATABASE_DRIVER=memory for local runs and serves as the store in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

// Store holds every collection behind one lock.
type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	tasks    map[string]domain.Task
	comments map[string]domain.Comment
	sessions map[string]domain.Session
	now      func() time.Time
}

type Option func(*Store)

// WithClock overrides the clock used for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		users:    make(map[string]domain.User),
		tasks:    make(map[string]domain.Task),
		comments: make(map[string]domain.Comment),
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Users() repository.UserRepository       { return &userRepository{s} }
func (s *Store) Tasks() repository.TaskRepository       { return &taskRepository{s} }
func (s *Store) Comments() repository.CommentRepository { return &commentRepository{s} }
func (s *Store) Sessions() repository.SessionRepository { return &sessionRepository{s} }

// WithinTransaction runs fn directly; the store lock already serializes each call.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

func newID() string {
	return uuid.NewString()
}

// newestFirst orders by createdAt desc, then id desc, matching the Mongo sort.
func newestFirst(aCreated, bCreated time.Time, aID, bID string) bool {
	if !aCreated.Equal(bCreated) {
		return aCreated.After(bCreated)
	}
	return aID > bID
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit <= 0 || limit > domain.MaxPageLimit {
		limit = domain.MaxPageLimit
	}
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

func groupCounts(counts map[string]int64) []domain.GroupCount {
	out := make([]domain.GroupCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, domain.GroupCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

var _ repository.Transactor = (*Store)(nil)
