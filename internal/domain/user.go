package domain

import "time"

// Role identifies the kind of principal acting on the core.
type Role string

const (
	RoleRenter Role = "renter"
	RoleHost   Role = "host"
	RoleAdmin  Role = "admin"
)

// Renter is an app user who books vehicles. HasActiveBooking mirrors "has
// exactly one active (pending/confirmed) booking across the whole system";
// the booking table is the source of truth, this flag is the cached view.
type Renter struct {
	ID               int32     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	IsDocVerified    bool      `json:"is_doc_verified"`
	HasActiveBooking bool      `json:"has_active_booking"`
	CreatedOn        time.Time `json:"created_on"`
}

// Host owns vehicles. Vehicle creation requires approved host documents.
type Host struct {
	ID            int32     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	IsDocVerified bool      `json:"is_doc_verified"`
	CreatedOn     time.Time `json:"created_on"`
}
