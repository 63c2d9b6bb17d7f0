// Package queue defines message payloads exchanged over the message broker.
package queue

// WhitelistChangedEvent is published on every whitelist transition.
// It carries enough information for downstream consumers to log,
// alert, or feed analytics without querying the primary database.
type WhitelistChangedEvent struct {
	Phone     string `json:"phone"`
	Action    string `json:"action"` // "added" | "removed"
	Source    string `json:"source"`
	ChangedAt string `json:"changed_at"`
}

// BillingProcessedEvent is published after each billing webhook event
// has been reconciled, including events that resolved to no phone.
type BillingProcessedEvent struct {
	Kind        string `json:"kind"`
	CustomerID  string `json:"customer_id"`
	Phone       string `json:"phone,omitempty"`
	Outcome     string `json:"outcome"`
	ProcessedAt string `json:"processed_at"`
}
