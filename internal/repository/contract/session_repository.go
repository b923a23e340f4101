package contract

import (
	"context"

	"lms-be/internal/entity"
)

// SessionRepository stores login sessions. Get returns (nil, nil) for an
// unknown or expired id.
type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
}
