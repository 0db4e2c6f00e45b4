package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the narrow slice of the account subsystem the order core consumes.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
