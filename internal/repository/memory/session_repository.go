package memory

import (
	"context"
	"time"

	"lms-be/internal/entity"
	"lms-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions in process memory. Used when no
// Redis is configured; sessions do not survive a restart.
func NewSessionRepository(ttl time.Duration) contract.SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *entity.Session) error {
	ttl := cache.DefaultExpiration
	if !session.ExpiresAt.IsZero() {
		ttl = time.Until(session.ExpiresAt)
	}
	r.cache.Set(session.Id, session, ttl)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, nil
	}
	session := x.(*entity.Session)
	if session.Expired(time.Now()) {
		r.cache.Delete(id)
		return nil, nil
	}
	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}
