package serverutils

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalUserID    = "user_id"
	LocalRole      = "role"
	LocalSessionID = "session_id"

	RoleAdmin = "admin"
)

// SessionChecker reports whether a login session is still alive.
type SessionChecker interface {
	SessionAlive(ctx context.Context, sessionID string) (bool, error)
}

// JwtMiddleware accepts a bearer token, or a token query parameter for
// websocket upgrades, and requires its login session to still exist.
func JwtMiddleware(secret string, sessions SessionChecker) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := bearerToken(ctx)
		if tokenStr == "" {
			return ErrUnauthorized("missing token")
		}

		claims, err := ParseToken(secret, tokenStr)
		if err != nil {
			return ErrUnauthorized("invalid token")
		}

		if sessions != nil {
			alive, err := sessions.SessionAlive(ctx.UserContext(), claims.SessionID)
			if err != nil {
				return err
			}
			if !alive {
				return ErrUnauthorized("session expired")
			}
		}

		ctx.Locals(LocalUserID, claims.UserID)
		ctx.Locals(LocalRole, claims.Role)
		ctx.Locals(LocalSessionID, claims.SessionID)
		return ctx.Next()
	}
}

func bearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return token
	}
	return ctx.Query("token")
}

// RequireAdmin must run after JwtMiddleware.
func RequireAdmin(ctx *fiber.Ctx) error {
	if role, _ := ctx.Locals(LocalRole).(string); role != RoleAdmin {
		return ErrForbidden("admin access required")
	}
	return ctx.Next()
}

func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals(LocalUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthorized("invalid user")
	}
	return id, nil
}

func CurrentSessionID(ctx *fiber.Ctx) string {
	sid, _ := ctx.Locals(LocalSessionID).(string)
	return sid
}

// ParamUUID parses a uuid route parameter, answering 400 when malformed.
func ParamUUID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, ErrBadRequest("invalid " + name)
	}
	return id, nil
}
