package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
)

// CheckoutRepo persists checkout sessions.  The unique index on
// checkout_sessions.order_id enforces at most one live session per
// order: a second concurrent checkout fails the insert and surfaces as
// ErrAlreadyProcessed instead of corrupting state.  A session in the
// failed state is not live; Reinitiate revives it so the customer can
// pay again.
type CheckoutRepo struct{ db *sql.DB }

func NewCheckoutRepo(db *sql.DB) *CheckoutRepo { return &CheckoutRepo{db: db} }

// Create inserts a session in the initiated state.
func (r *CheckoutRepo) Create(ctx context.Context, orderID uint64, paymentMethod, paymentIntentID string) error {
    _, err := r.db.ExecContext(ctx,
        "INSERT INTO checkout_sessions (order_id, payment_method, payment_intent_id, status) VALUES (?,?,?,?)",
        orderID, paymentMethod, paymentIntentID, string(model.CheckoutInitiated))
    if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
        return ErrAlreadyProcessed
    }
    return err
}

// Reinitiate revives a failed session with a fresh payment method and
// intent.  The conditional WHERE means only a failed session qualifies;
// an initiated or confirmed one stays untouched and the caller sees
// ErrAlreadyProcessed.
func (r *CheckoutRepo) Reinitiate(ctx context.Context, orderID uint64, paymentMethod, paymentIntentID string) error {
    res, err := r.db.ExecContext(ctx,
        "UPDATE checkout_sessions SET status=?, payment_method=?, payment_intent_id=?, processed_at=NULL WHERE order_id=? AND status=?",
        string(model.CheckoutInitiated), paymentMethod, paymentIntentID, orderID, string(model.CheckoutFailed))
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrAlreadyProcessed
    }
    return nil
}

// GetByOrderID returns the session for an order.
func (r *CheckoutRepo) GetByOrderID(ctx context.Context, orderID uint64) (model.CheckoutSession, error) {
    var (
        s           model.CheckoutSession
        status      string
        processedAt sql.NullTime
    )
    err := r.db.QueryRowContext(ctx,
        "SELECT id, order_id, payment_method, payment_intent_id, status, processed_at, created_at FROM checkout_sessions WHERE order_id=? LIMIT 1",
        orderID).Scan(&s.ID, &s.OrderID, &s.PaymentMethod, &s.PaymentIntentID, &status, &processedAt, &s.CreatedAt)
    if err == sql.ErrNoRows {
        return model.CheckoutSession{}, ErrNotFound
    }
    if err != nil {
        return model.CheckoutSession{}, err
    }
    s.Status = model.CheckoutStatus(status)
    if processedAt.Valid {
        t := processedAt.Time
        s.ProcessedAt = &t
    }
    return s, nil
}

// SetStatus moves a session between states conditionally, mirroring the
// order CAS: only a session still in the expected state is updated.  The
// processed_at timestamp is stamped when the session reaches a terminal
// state.
func (r *CheckoutRepo) SetStatus(ctx context.Context, orderID uint64, from, to model.CheckoutStatus) error {
    res, err := r.db.ExecContext(ctx,
        "UPDATE checkout_sessions SET status=?, processed_at=NOW() WHERE order_id=? AND status=?",
        string(to), orderID, string(from))
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrAlreadyProcessed
    }
    return nil
}
