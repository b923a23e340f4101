package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lms-be/internal/entity"
	"lms-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lms:session:"

type SessionRepository struct {
	rdb *redis.Client
}

// NewSessionRepository shares login sessions between instances.
func NewSessionRepository(rdb *redis.Client) contract.SessionRepository {
	return &SessionRepository{rdb: rdb}
}

func (r *SessionRepository) Save(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = time.Until(session.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}
	return r.rdb.Set(ctx, keyPrefix+session.Id, data, ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.rdb.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, keyPrefix+id).Err()
}
