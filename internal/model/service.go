package model

import "time"

// Service is a bookable catalog entry.  Prices are stored in integer
// paise to avoid floating point arithmetic on money.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the service.
//  Description – optional free text description.
//  PriceCents  – current catalog price in paise.
//  IsActive    – whether the service can be ordered.
//  CreatedAt   – timestamp of creation.
type Service struct {
    ID          uint64    `json:"id"`           // services.id
    Name        string    `json:"name"`         // services.name
    Description string    `json:"description"`  // services.description
    PriceCents  uint32    `json:"price_cents"`  // services.price_cents
    IsActive    bool      `json:"is_active"`    // services.is_active
    CreatedAt   time.Time `json:"created_at"`   // services.created_at
}
