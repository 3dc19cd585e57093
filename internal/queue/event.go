// Package queue defines message payloads exchanged over the message broker.
package queue

// Audit event names published by the auth flows.
const (
	EventUserRegistered   = "user.registered"
	EventUserLogin        = "user.login"
	EventSessionRefreshed = "session.refreshed"
	EventSessionRevoked   = "session.revoked"
)

// AuthAuditEvent is published after an auth flow completes. It carries enough
// context for downstream consumers to build an audit trail without querying
// the primary database. Token material is never part of the payload.
type AuthAuditEvent struct {
	Event      string `json:"event"`
	UserID     string `json:"user_id"`
	Username   string `json:"username,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
