// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into outbound email.
package queue

// EmailQueueName is the durable queue carrying outbound email jobs.
const EmailQueueName = "email.send"

// Email kinds understood by the consumer. Each maps to a template.
const (
	EmailKindConfirm = "confirm_email"
)

// EmailEvent is published whenever a handler wants an email sent. It carries
// everything the consumer needs to render and deliver the message without
// querying the primary database.
type EmailEvent struct {
	Kind     string `json:"kind"`
	To       string `json:"to"`
	Username string `json:"username"`
	Token    string `json:"token"`
	BaseURL  string `json:"base_url"`
}
