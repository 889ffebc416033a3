package address

import (
	"time"

	"myhometech/internal/pkg/apperr"
)

// Address belongs to a client user. Each client with addresses has exactly one primary.
type Address struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	ClientID   int64     `gorm:"column:client_id;index;not null" json:"client_id"`
	Label      string    `gorm:"column:label;size:64" json:"label"`
	Street     string    `gorm:"column:street;size:255;not null" json:"street"`
	City       string    `gorm:"column:city;size:120;not null" json:"city"`
	PostalCode string    `gorm:"column:postal_code;size:20" json:"postal_code"`
	IsPrimary  bool      `gorm:"column:is_primary;not null" json:"is_primary"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Address) TableName() string {
	return "addresses"
}

var (
	ErrNotFound = apperr.NotFound("ADDRESS_NOT_FOUND", "Address not found")
	ErrInUse    = apperr.Conflict("ADDRESS_IN_USE", "Address is referenced by an open service request")
)

type CreateRequest struct {
	Label      string `json:"label" validate:"max=64"`
	Street     string `json:"street" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=120"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	IsPrimary  bool   `json:"is_primary"`
}

type UpdateRequest struct {
	Label      *string `json:"label" validate:"omitempty,max=64"`
	Street     *string `json:"street" validate:"omitempty,min=1,max=255"`
	City       *string `json:"city" validate:"omitempty,min=1,max=120"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=20"`
}
