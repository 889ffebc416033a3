package profile

// UpdateClientProfileRequest represents client profile update
type UpdateClientProfileRequest struct {
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

// UpdateTechnicianProfileRequest represents technician profile update
type UpdateTechnicianProfileRequest struct {
	Phone           *string  `json:"phone" validate:"omitempty,max=32"`
	Specialties     []string `json:"specialties" validate:"omitempty,max=20,dive,max=64"`
	YearsExperience *int     `json:"years_experience" validate:"omitempty,min=0,max=80"`
	Bio             *string  `json:"bio" validate:"omitempty,max=2000"`
}
