package domain

import "time"

// AuditFields holds the identity the backend assigns to an accepted record.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"` // Operator (user) reference
}
