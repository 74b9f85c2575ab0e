package memory

import (
	"context"

	"github.com/fastygo/taskdesk/domain"
)

type sessionRepository struct {
	s *Store
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.s.stamp()
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for id, session := range r.s.sessions {
		if session.UserID == userID {
			delete(r.s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
