// Package queue defines message payloads exchanged over the message broker.
package queue

// AuthEmailEvent is published whenever the auth flow needs to send an email
// (registration welcome, recovery instructions). It carries the fully
// rendered message so the consumer can deliver it without querying the
// primary database.
type AuthEmailEvent struct {
	To       string `json:"to"`
	Username string `json:"username"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	QueuedAt string `json:"queued_at"`
}
