package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is issued by the external auth service; this core only validates.
type Session struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	Role      string     `db:"role"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
