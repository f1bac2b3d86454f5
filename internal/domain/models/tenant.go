package models

import "time"

// Tenant is the isolation boundary. Every other entity carries a TenantID
// and no query may cross it. Tenants themselves have no soft delete.
type Tenant struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
