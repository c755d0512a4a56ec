package repository

import (
    "context"
    "database/sql"
)

// WebhookRepo records processed gateway events.  The unique index on
// webhook_events.event_id makes Claim an atomic insert-if-absent, which
// is the sole idempotency guard for webhook processing.
type WebhookRepo struct{ db *sql.DB }

func NewWebhookRepo(db *sql.DB) *WebhookRepo { return &WebhookRepo{db: db} }

// Claim attempts to record an event id.  It returns true when this call
// inserted the row, i.e. the caller owns processing of the event; false
// means the event was already handled (or is being handled) and must be
// acknowledged without reprocessing.
func (r *WebhookRepo) Claim(ctx context.Context, eventID, eventType string) (bool, error) {
    res, err := r.db.ExecContext(ctx,
        "INSERT IGNORE INTO webhook_events (event_id, event_type) VALUES (?,?)",
        eventID, eventType)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// Release removes a claimed event id so the gateway's redelivery can be
// processed again.  Called only when processing failed after a
// successful Claim.
func (r *WebhookRepo) Release(ctx context.Context, eventID string) error {
    _, err := r.db.ExecContext(ctx,
        "DELETE FROM webhook_events WHERE event_id=?", eventID)
    return err
}
