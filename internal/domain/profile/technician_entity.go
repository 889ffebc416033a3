package profile

import "time"

// Technician is the 1:1 extension of a technician user.
type Technician struct {
	ID              int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID          int64     `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	Phone           string    `gorm:"column:phone;size:32" json:"phone,omitempty"`
	Specialties     []string  `gorm:"column:specialties;type:text;serializer:json" json:"specialties"`
	YearsExperience int       `gorm:"column:years_experience" json:"years_experience"`
	Bio             string    `gorm:"column:bio;type:text" json:"bio,omitempty"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Technician) TableName() string {
	return "technicians"
}

func (t *Technician) AttachUser(userID int64) {
	t.UserID = userID
}

// PublicTechnician is what anyone may see about a technician.
type PublicTechnician struct {
	UserID          int64    `json:"user_id"`
	Name            string   `json:"name"`
	Specialties     []string `json:"specialties"`
	YearsExperience int      `json:"years_experience"`
	Bio             string   `json:"bio,omitempty"`
}
