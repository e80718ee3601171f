package repository

import (
	"sync"
	"time"

	"pdf-annotator/internal/domain"
)

// MemorySessionRepository keeps live sessions in process memory.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]*domain.Session)}
}

func (r *MemorySessionRepository) Save(session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *MemorySessionRepository) Get(id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (r *MemorySessionRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// IdleSince returns the sessions not used since cutoff. It locks each
// session briefly to read its last activity.
func (r *MemorySessionRepository) IdleSince(cutoff time.Time) []*domain.Session {
	r.mu.RLock()
	candidates := make([]*domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		candidates = append(candidates, s)
	}
	r.mu.RUnlock()

	var idle []*domain.Session
	for _, s := range candidates {
		s.Lock()
		if s.LastActive.Before(cutoff) {
			idle = append(idle, s)
		}
		s.Unlock()
	}
	return idle
}

func (r *MemorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
