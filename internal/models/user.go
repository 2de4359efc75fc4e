package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleDonor   = "donor"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// User account statuses
const (
	UserStatusActive    = "active"
	UserStatusPending   = "pending"
	UserStatusRejected  = "rejected"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}
