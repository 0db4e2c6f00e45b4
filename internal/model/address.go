package model

import "github.com/google/uuid"

// Address is a delivery address referenced by orders. Validation against
// postal-code services happens in the address subsystem, not here.
type Address struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	Street       string    `json:"street" db:"street"`
	StreetNumber string    `json:"streetNumber" db:"street_number"`
	City         string    `json:"city" db:"city"`
	StateCode    string    `json:"stateCode" db:"state_code"`
	PostalCode   string    `json:"postalCode" db:"postal_code"`
	Country      string    `json:"country" db:"country"`
}
