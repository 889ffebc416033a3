package appliance

import (
	"time"

	"myhometech/internal/pkg/apperr"
)

// Appliance is catalog reference data maintained by admins.
type Appliance struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"column:name;size:120;not null" json:"name"`
	Brand     string    `gorm:"column:brand;size:120;index" json:"brand"`
	Model     string    `gorm:"column:model;size:120" json:"model"`
	Category  string    `gorm:"column:category;size:64;index" json:"category"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Appliance) TableName() string {
	return "appliances"
}

var (
	ErrNotFound = apperr.NotFound("APPLIANCE_NOT_FOUND", "Appliance not found")
	ErrInUse    = apperr.Conflict("APPLIANCE_IN_USE", "Appliance is referenced by service requests")
)

type CreateRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Brand    string `json:"brand" validate:"max=120"`
	Model    string `json:"model" validate:"max=120"`
	Category string `json:"category" validate:"max=64"`
}

type UpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Brand    *string `json:"brand" validate:"omitempty,max=120"`
	Model    *string `json:"model" validate:"omitempty,max=120"`
	Category *string `json:"category" validate:"omitempty,max=64"`
}

type ListFilter struct {
	Query    string
	Category string
	Limit    int
	Offset   int
}
