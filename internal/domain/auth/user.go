package auth

import "time"

type UserRole string

const (
	RoleClient     UserRole = "client"
	RoleTechnician UserRole = "technician"
	RoleAdmin      UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleClient || r == RoleTechnician || r == RoleAdmin
}

type User struct {
	ID           int64     `gorm:"primaryKey;column:id" json:"id"`
	Name         string    `gorm:"column:name;size:120;not null" json:"name"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         UserRole  `gorm:"column:role;size:16;index;not null" json:"role"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
