// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderConfirmedEvent is published when an order is successfully confirmed,
// either through the confirm endpoint or a gateway webhook. It carries enough
// information for downstream consumers to log, notify, or trigger analytics
// without querying the primary database.
type OrderConfirmedEvent struct {
	OrderID         uint64 `json:"order_id"`
	OwnerID         uint64 `json:"owner_id"`
	TotalCents      uint32 `json:"total_cents"`
	PaymentIntentID string `json:"payment_intent_id"`
	ConfirmedAt     string `json:"confirmed_at"`
}
