package memory

import (
	"context"
	"sort"

	"github.com/fastygo/taskdesk/domain"
)

type commentRepository struct {
	s *Store
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if comment == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if comment.ID == "" {
		comment.ID = newID()
	}
	ts := r.s.stamp()
	comment.CreatedAt = ts
	comment.UpdatedAt = ts
	r.s.comments[comment.ID] = *comment
	return comment, nil
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Comment{}
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CountByAuthor is used by tests to observe comments left behind by deleted users.
func (s *Store) CountByAuthor(authorID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.comments {
		if c.AuthorID == authorID {
			n++
		}
	}
	return n
}
