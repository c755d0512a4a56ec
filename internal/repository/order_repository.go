package repository

import (
    "context"
    "database/sql"

    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/utils"
)

// OrderRepo provides persistence for orders, their line items and their
// status history.  Status changes go through conditional updates so that
// two concurrent writers racing from the same starting status can never
// both succeed; the loser observes ErrInvalidTransition.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new order, its line items and the seed history row
// within the scope of an existing transaction.  It populates the
// generated ID on the provided order.  The caller must commit or
// rollback the transaction.  The order must arrive with Status pending
// and a server-computed total.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order, items []model.OrderItem) error {
    res, err := tx.ExecContext(ctx,
        "INSERT INTO orders (owner_id, status, total_cents, scheduled_date) VALUES (?,?,?,?)",
        o.OwnerID, string(o.Status), o.TotalCents, o.ScheduledDate)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    o.ID = uint64(id)

    if len(items) > 0 {
        query := "INSERT INTO order_items (order_id, service_id, quantity, unit_price_cents) VALUES "
        args := make([]interface{}, 0, len(items)*4)
        for i, it := range items {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?)"
            args = append(args, o.ID, it.ServiceID, it.Quantity, it.UnitPriceCents)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }

    // Seed history entry: the creation itself is the first audit record.
    _, err = tx.ExecContext(ctx,
        "INSERT INTO order_status_history (order_id, status, changed_by) VALUES (?,?,?)",
        o.ID, string(o.Status), o.OwnerID)
    if err != nil {
        return err
    }

    // Query back the row to populate timestamps set by the database.
    return tx.QueryRowContext(ctx,
        "SELECT created_at, updated_at FROM orders WHERE id=?",
        o.ID).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// GetByID returns a single order row.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
    var (
        o      model.Order
        status string
    )
    err := r.db.QueryRowContext(ctx,
        "SELECT id, owner_id, status, total_cents, scheduled_date, created_at, updated_at FROM orders WHERE id=? LIMIT 1",
        id).Scan(&o.ID, &o.OwnerID, &status, &o.TotalCents, &o.ScheduledDate, &o.CreatedAt, &o.UpdatedAt)
    if err == sql.ErrNoRows {
        return model.Order{}, ErrNotFound
    }
    if err != nil {
        return model.Order{}, err
    }
    o.Status = model.OrderStatus(status)
    return o, nil
}

// Items returns the line items of an order.
func (r *OrderRepo) Items(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT id, order_id, service_id, quantity, unit_price_cents FROM order_items WHERE order_id=? ORDER BY id",
        orderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.OrderItem, 0)
    for rows.Next() {
        var it model.OrderItem
        if err := rows.Scan(&it.ID, &it.OrderID, &it.ServiceID, &it.Quantity, &it.UnitPriceCents); err != nil {
            return nil, err
        }
        out = append(out, it)
    }
    return out, rows.Err()
}

// History returns the status history of an order in chronological order.
// This is the order's audit trail; rows are never deleted.
func (r *OrderRepo) History(ctx context.Context, orderID uint64) ([]model.StatusChange, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT id, order_id, status, changed_by, changed_at FROM order_status_history WHERE order_id=? ORDER BY id",
        orderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.StatusChange, 0)
    for rows.Next() {
        var (
            sc     model.StatusChange
            status string
        )
        if err := rows.Scan(&sc.ID, &sc.OrderID, &status, &sc.ChangedBy, &sc.ChangedAt); err != nil {
            return nil, err
        }
        sc.Status = model.OrderStatus(status)
        out = append(out, sc)
    }
    return out, rows.Err()
}

// OrderFilter narrows List results.  A nil OwnerID means all owners; the
// handler forces it to the caller for customers.
type OrderFilter struct {
    OwnerID *uint64
    Status  model.OrderStatus
}

// List returns orders matching the filter, newest first, paginated.
func (r *OrderRepo) List(ctx context.Context, f OrderFilter, p utils.Pagination) ([]model.Order, error) {
    query := "SELECT id, owner_id, status, total_cents, scheduled_date, created_at, updated_at FROM orders WHERE 1=1"
    args := make([]interface{}, 0, 4)
    if f.OwnerID != nil {
        query += " AND owner_id=?"
        args = append(args, *f.OwnerID)
    }
    if f.Status != "" {
        query += " AND status=?"
        args = append(args, string(f.Status))
    }
    query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
    args = append(args, p.PageSize, p.Offset())

    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Order, 0, p.PageSize)
    for rows.Next() {
        var (
            o      model.Order
            status string
        )
        if err := rows.Scan(&o.ID, &o.OwnerID, &status, &o.TotalCents, &o.ScheduledDate, &o.CreatedAt, &o.UpdatedAt); err != nil {
            return nil, err
        }
        o.Status = model.OrderStatus(status)
        out = append(out, o)
    }
    return out, rows.Err()
}

// TransitionStatus moves an order from one status to another as a
// compare-and-swap: the UPDATE only applies while the order is still in
// the expected starting status.  On success the audit row is appended in
// the same transaction.  When the conditional update matches no row the
// method distinguishes a missing order (ErrNotFound) from a lost race or
// illegal precondition (ErrInvalidTransition).
func (r *OrderRepo) TransitionStatus(ctx context.Context, orderID uint64, from, to model.OrderStatus, changedBy uint64) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := tx.ExecContext(ctx,
        "UPDATE orders SET status=?, updated_at=NOW() WHERE id=? AND status=?",
        string(to), orderID, string(from))
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists uint64
        err := tx.QueryRowContext(ctx, "SELECT id FROM orders WHERE id=?", orderID).Scan(&exists)
        if err == sql.ErrNoRows {
            return ErrNotFound
        }
        if err != nil {
            return err
        }
        return ErrInvalidTransition
    }

    if _, err := tx.ExecContext(ctx,
        "INSERT INTO order_status_history (order_id, status, changed_by) VALUES (?,?,?)",
        orderID, string(to), changedBy); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
