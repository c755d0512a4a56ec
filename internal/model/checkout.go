package model

import "time"

// CheckoutStatus enumerates the states of a checkout session.
type CheckoutStatus string

const (
    CheckoutInitiated CheckoutStatus = "initiated"
    CheckoutConfirmed CheckoutStatus = "confirmed"
    CheckoutFailed    CheckoutStatus = "failed"
)

// CheckoutSession records a payment attempt for an order.  The unique
// index on OrderID guarantees at most one session per order, which is
// what makes concurrent double-checkout impossible.
//
// Fields:
//  ID              – primary key identifier.
//  OrderID         – order being paid for (unique).
//  PaymentMethod   – method chosen by the customer (card, upi, ...).
//  PaymentIntentID – identifier returned by the payment gateway.
//  Status          – initiated, confirmed or failed.
//  ProcessedAt     – when the session reached a terminal state (nullable).
//  CreatedAt       – creation timestamp.
type CheckoutSession struct {
    ID              uint64         `json:"id"`                // checkout_sessions.id
    OrderID         uint64         `json:"order_id"`          // checkout_sessions.order_id
    PaymentMethod   string         `json:"payment_method"`    // checkout_sessions.payment_method
    PaymentIntentID string         `json:"payment_intent_id"` // checkout_sessions.payment_intent_id
    Status          CheckoutStatus `json:"status"`            // checkout_sessions.status
    ProcessedAt     *time.Time     `json:"processed_at"`      // checkout_sessions.processed_at (nullable)
    CreatedAt       time.Time      `json:"created_at"`        // checkout_sessions.created_at
}

// WebhookEvent stores gateway webhook deliveries that have already been
// processed.  The unique EventID column is the idempotency guard: a
// redelivered event fails the insert and is acknowledged without side
// effects.
type WebhookEvent struct {
    ID          uint64    // webhook_events.id
    EventID     string    // webhook_events.event_id (unique)
    EventType   string    // webhook_events.event_type
    ProcessedAt time.Time // webhook_events.processed_at
}
