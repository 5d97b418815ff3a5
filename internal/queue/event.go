// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

// Audit actions published on the auth.audit queue.
const (
	ActionUserRegistered = "user.registered"
	ActionUserLoggedIn   = "user.logged_in"
	ActionSessionRotated = "session.rotated"
	ActionUserLoggedOut  = "user.logged_out"
	ActionUserDeleted    = "user.deleted"
)

// AuthEvent is published after a successful auth operation. It carries
// enough for downstream consumers to build an audit trail without querying
// the primary database.
type AuthEvent struct {
	Action     string `json:"action"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	SessionID  uint64 `json:"session_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
