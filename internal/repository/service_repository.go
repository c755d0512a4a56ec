package repository

import (
	"context"
	"database/sql"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
)

// ServiceRepo provides lookups against the service catalog.  Order
// creation depends on it to resolve ids and to read the authoritative
// price; client-supplied prices are never consulted.
type ServiceRepo struct{ db *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

// GetByID returns a catalog entry, active or not.  Callers decide whether
// an inactive service is acceptable for their operation.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (model.Service, error) {
	var s model.Service
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, price_cents, is_active, created_at FROM services WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.IsActive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Service{}, ErrNotFound
	}
	if err != nil {
		return model.Service{}, err
	}
	return s, nil
}

// ListActive returns the active catalog ordered by name, for the public
// browse endpoint.
func (r *ServiceRepo) ListActive(ctx context.Context) ([]model.Service, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, price_cents, is_active, created_at FROM services WHERE is_active=1 ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Service, 0)
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a catalog entry and returns its id.  Only staff/admin
// reach this through the router.
func (r *ServiceRepo) Create(ctx context.Context, name, description string, priceCents uint32, active bool) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO services (name, description, price_cents, is_active) VALUES (?,?,?,?)",
		name, description, priceCents, active)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
