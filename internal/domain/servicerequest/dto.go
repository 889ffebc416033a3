package servicerequest

import "time"

type CreateRequest struct {
	ApplianceID      int64     `json:"appliance_id" validate:"required,gt=0"`
	AddressID        int64     `json:"address_id" validate:"required,gt=0"`
	Description      string    `json:"description" validate:"required,min=3,max=2000"`
	ProposedDateTime time.Time `json:"proposed_date_time" validate:"required"`
}

type ProposeRequest struct {
	NewDateTime time.Time `json:"new_date_time" validate:"required"`
	Comment     string    `json:"comment" validate:"max=500"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Actor is the authenticated caller.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsAdmin() bool      { return a.Role == "admin" }
func (a Actor) IsClient() bool     { return a.Role == "client" }
func (a Actor) IsTechnician() bool { return a.Role == "technician" }

// ProposalResult is returned by the proposal endpoints.
type ProposalResult struct {
	Proposal       *Proposal       `json:"proposal"`
	ServiceRequest *ServiceRequest `json:"service_request"`
}
