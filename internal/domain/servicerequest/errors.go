package servicerequest

import "myhometech/internal/pkg/apperr"

var (
	ErrNotFound            = apperr.NotFound("SERVICE_REQUEST_NOT_FOUND", "Service request not found")
	ErrNotPending          = apperr.NotFound("SERVICE_REQUEST_NOT_PENDING", "Service request is no longer open")
	ErrProposalNotFound    = apperr.NotFound("PROPOSAL_NOT_FOUND", "Proposal not found")
	ErrProposalResolved    = apperr.NotFound("PROPOSAL_RESOLVED", "Proposal was already resolved")
	ErrApplianceNotFound   = apperr.NotFound("APPLIANCE_NOT_FOUND", "Appliance not found")
	ErrAddressNotFound     = apperr.NotFound("ADDRESS_NOT_FOUND", "Address not found")
	ErrDateInPast          = apperr.Validation("DATE_IN_PAST", "Date must be in the future")
	ErrOutsideWorkingHours = apperr.Validation("OUTSIDE_WORKING_HOURS", "Date must fall within working hours")
	ErrProposalCap         = apperr.Validation("PROPOSAL_LIMIT_REACHED", "Maximum number of proposals reached for this request")
	ErrProposalSpacing     = apperr.Validation("PROPOSAL_TOO_CLOSE", "Proposal is too close to one of your earlier proposals")
	ErrProposalOutdated    = apperr.Validation("PROPOSAL_OUTDATED", "Proposed date has already passed")
	ErrInvalidStatus       = apperr.Validation("INVALID_STATUS", "Unknown status filter")
	ErrScheduleOverlap     = apperr.Conflict("SCHEDULE_OVERLAP", "Technician already has a job scheduled at that time")
	ErrConcurrentUpdate    = apperr.Conflict("CONCURRENT_UPDATE", "Service request was changed by someone else")
	ErrInvalidTransition   = apperr.Conflict("INVALID_STATUS_TRANSITION", "Service request cannot move to that status")
	ErrNotAllowed          = apperr.Forbidden("NOT_ALLOWED", "You cannot perform this action on the service request")
)
