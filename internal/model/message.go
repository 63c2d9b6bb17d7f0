package model

import "time"

// Message directions as stored in the `messages` table.
const (
	DirectionInbound   = "inbound"
	DirectionAssistant = "assistant"
)

// Message mirrors the `messages` table.  Inbound user texts and
// assistant replies share the table, distinguished by Direction.
// ResponseMs records how long the assistant took to answer and is
// zero for system-originated messages (onboarding prompts, command
// acknowledgments) since those are not query answers.
type Message struct {
	ID         uint64    // messages.id
	Phone      string    // messages.phone
	Direction  string    // messages.direction
	Body       string    // messages.body
	ResponseMs int64     // messages.response_ms
	CreatedAt  time.Time // messages.created_at
}

// DeliveryResult is what the SMS gateway reports for an attempted send.
type DeliveryResult struct {
	Status            string // provider status string, e.g. "queued"
	ProviderMessageID string // provider-assigned message id
}
