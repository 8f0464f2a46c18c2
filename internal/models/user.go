package models

import (
	"database/sql"
	"time"
)

// User is the slice of the marketplace user record this service touches:
// identity plus the ephemeral presence marker maintained by the session
// registry.
type User struct {
	ID          string         `db:"id" json:"id"`
	Username    string         `db:"username" json:"username"`
	Email       string         `db:"email" json:"email"`
	Role        string         `db:"role" json:"role"`
	IsOnline    bool           `db:"is_online" json:"isOnline"`
	LiveAddress sql.NullString `db:"live_address" json:"-"`
	LastSeenAt  time.Time      `db:"last_seen_at" json:"lastSeenAt"`
}
