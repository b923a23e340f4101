package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session referenced by the "sid" token claim.
type Session struct {
	Id        string    `json:"id"`
	UserId    uuid.UUID `json:"user_id"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
