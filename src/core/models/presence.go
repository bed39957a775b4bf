package models

import "time"

// PresenceRecord is ephemeral: stored as a JSON value in the cache with a
// short TTL, never persisted durably. It expires naturally.
type PresenceRecord struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Status    string    `json:"status"`
	Mood      string    `json:"mood"`
	QueryHint string    `json:"query_hint,omitempty"`
	LastSeen  time.Time `json:"last_seen"`
}
