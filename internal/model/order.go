package model

import "time"

// OrderStatus enumerates the lifecycle states of an order.  Transitions
// between states are restricted to the table encoded in CanTransition;
// Completed and Cancelled are terminal.
type OrderStatus string

const (
    StatusPending    OrderStatus = "pending"
    StatusConfirmed  OrderStatus = "confirmed"
    StatusProcessing OrderStatus = "processing"
    StatusCompleted  OrderStatus = "completed"
    StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
    switch s {
    case StatusPending, StatusConfirmed, StatusProcessing, StatusCompleted, StatusCancelled:
        return true
    }
    return false
}

// transitions maps each status to its legal successors.  Cancellation is
// only possible while the order has not started processing.
var transitions = map[OrderStatus][]OrderStatus{
    StatusPending:    {StatusConfirmed, StatusCancelled},
    StatusConfirmed:  {StatusProcessing, StatusCancelled},
    StatusProcessing: {StatusCompleted},
    StatusCompleted:  {},
    StatusCancelled:  {},
}

// CanTransition reports whether an order may move from one status to
// another.  A transition to the current status is not legal.
func CanTransition(from, to OrderStatus) bool {
    for _, next := range transitions[from] {
        if next == to {
            return true
        }
    }
    return false
}

// Order groups one or more catalog services booked by a user in a single
// transaction.  The total is computed server-side from catalog prices at
// creation time and never changes afterwards.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user who placed the order; immutable.
//  Status        – current lifecycle state.
//  TotalCents    – total price in paise, fixed at creation.
//  ScheduledDate – requested service date.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Order struct {
    ID            uint64      `json:"id"`             // orders.id
    OwnerID       uint64      `json:"owner_id"`       // orders.owner_id
    Status        OrderStatus `json:"status"`         // orders.status
    TotalCents    uint32      `json:"total_cents"`    // orders.total_cents
    ScheduledDate time.Time   `json:"scheduled_date"` // orders.scheduled_date
    CreatedAt     time.Time   `json:"created_at"`     // orders.created_at
    UpdatedAt     time.Time   `json:"updated_at"`     // orders.updated_at
}

// OrderItem is a single line of an order with the unit price snapshotted
// at order creation time.
type OrderItem struct {
    ID             uint64 `json:"id"`               // order_items.id
    OrderID        uint64 `json:"order_id"`         // order_items.order_id
    ServiceID      uint64 `json:"service_id"`       // order_items.service_id
    Quantity       uint32 `json:"quantity"`         // order_items.quantity
    UnitPriceCents uint32 `json:"unit_price_cents"` // order_items.unit_price_cents
}

// StatusChange is one entry of an order's status history.  The history is
// the audit trail for the order and is retained for its full lifetime.
type StatusChange struct {
    ID        uint64      `json:"id"`         // order_status_history.id
    OrderID   uint64      `json:"order_id"`   // order_status_history.order_id
    Status    OrderStatus `json:"status"`     // order_status_history.status
    ChangedBy uint64      `json:"changed_by"` // order_status_history.changed_by
    ChangedAt time.Time   `json:"changed_at"` // order_status_history.changed_at
}
