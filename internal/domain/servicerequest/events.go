package servicerequest

import (
	"fmt"

	"myhometech/internal/domain/notification"
)

type EventType string

const (
	EventNew              EventType = "new"
	EventUpdated          EventType = "updated"
	EventRemoved          EventType = "removed"
	EventProposalCreated  EventType = "proposal_created"
	EventProposalAccepted EventType = "proposal_accepted"
	EventProposalRejected EventType = "proposal_rejected"
)

// Event is the WebSocket payload pushed on every change.
type Event struct {
	Type           EventType       `json:"type"`
	ServiceRequest *ServiceRequest `json:"serviceRequest"`
	Proposal       *Proposal       `json:"proposal,omitempty"`
}

const roleTechnician = "technician"

func (s *Service) createdMessages(sr *ServiceRequest) []notification.Message {
	return []notification.Message{{
		Role:  roleTechnician,
		Event: Event{Type: EventNew, ServiceRequest: sr},
	}}
}

// removedMessage tells every technician the request left the open pool.
func removedMessage(sr *ServiceRequest) notification.Message {
	return notification.Message{
		Role:  roleTechnician,
		Event: Event{Type: EventRemoved, ServiceRequest: sr},
	}
}

func (s *Service) scheduledMessages(sr *ServiceRequest, rejected []Proposal) []notification.Message {
	msgs := []notification.Message{
		{
			UserIDs:          []int64{sr.ClientID},
			PushUserIDs:      technicianIDs(sr),
			Type:             notification.TypeRequestScheduled,
			Text:             fmt.Sprintf("Your service request #%d was accepted and scheduled for %s", sr.ID, s.formatTime(*sr.ScheduledAt)),
			ServiceRequestID: &sr.ID,
			Event:            Event{Type: EventUpdated, ServiceRequest: sr},
			Subject:          "Service request scheduled",
		},
		removedMessage(sr),
	}
	return append(msgs, s.rejectedMessages(sr, rejected)...)
}

func (s *Service) proposalCreatedMessages(sr *ServiceRequest, p *Proposal) []notification.Message {
	return []notification.Message{{
		UserIDs:          []int64{sr.ClientID},
		PushUserIDs:      []int64{p.TechnicianID},
		Type:             notification.TypeProposalCreated,
		Text:             fmt.Sprintf("A technician proposed %s for service request #%d", s.formatTime(p.ProposedDateTime), sr.ID),
		ServiceRequestID: &sr.ID,
		Event:            Event{Type: EventProposalCreated, ServiceRequest: sr, Proposal: p},
	}}
}

func (s *Service) proposalAcceptedMessages(sr *ServiceRequest, p *Proposal, rejected []Proposal) []notification.Message {
	msgs := []notification.Message{
		{
			UserIDs:          []int64{p.TechnicianID},
			PushUserIDs:      []int64{sr.ClientID},
			Type:             notification.TypeProposalAccepted,
			Text:             fmt.Sprintf("Your proposed date %s for service request #%d was accepted", s.formatTime(p.ProposedDateTime), sr.ID),
			ServiceRequestID: &sr.ID,
			Event:            Event{Type: EventProposalAccepted, ServiceRequest: sr, Proposal: p},
			Subject:          "Service request scheduled",
		},
		removedMessage(sr),
	}
	return append(msgs, s.rejectedMessages(sr, rejected)...)
}

// rejectedMessages informs technicians whose proposals were declined, except
// the technician the request ended up assigned to.
func (s *Service) rejectedMessages(sr *ServiceRequest, rejected []Proposal) []notification.Message {
	var msgs []notification.Message
	for i := range rejected {
		p := rejected[i]
		if sr.AssignedTo(p.TechnicianID) {
			continue
		}
		msgs = append(msgs, notification.Message{
			UserIDs:          []int64{p.TechnicianID},
			Type:             notification.TypeProposalRejected,
			Text:             fmt.Sprintf("Your proposed date %s for service request #%d was declined", s.formatTime(p.ProposedDateTime), sr.ID),
			ServiceRequestID: &sr.ID,
			Event:            Event{Type: EventProposalRejected, ServiceRequest: sr, Proposal: &p},
		})
	}
	return msgs
}

func (s *Service) completedMessages(sr *ServiceRequest) []notification.Message {
	return []notification.Message{{
		UserIDs:          technicianIDs(sr),
		PushUserIDs:      []int64{sr.ClientID},
		Type:             notification.TypeRequestCompleted,
		Text:             fmt.Sprintf("Service request #%d was marked as completed by the client", sr.ID),
		ServiceRequestID: &sr.ID,
		Event:            Event{Type: EventUpdated, ServiceRequest: sr},
		Subject:          "Service request completed",
	}}
}

// cancelledMessages notifies every party except the one who cancelled.
func (s *Service) cancelledMessages(sr *ServiceRequest, prev Status, actor Actor, rejected []Proposal) []notification.Message {
	var counterparties []int64
	for _, id := range append([]int64{sr.ClientID}, technicianIDs(sr)...) {
		if id != actor.UserID {
			counterparties = append(counterparties, id)
		}
	}

	text := fmt.Sprintf("Service request #%d was cancelled", sr.ID)
	if sr.CancellationReason != nil && *sr.CancellationReason != "" {
		text += ": " + *sr.CancellationReason
	}

	msgs := []notification.Message{{
		UserIDs:          counterparties,
		PushUserIDs:      []int64{actor.UserID},
		Type:             notification.TypeRequestCancelled,
		Text:             text,
		ServiceRequestID: &sr.ID,
		Event:            Event{Type: EventUpdated, ServiceRequest: sr},
		Subject:          "Service request cancelled",
	}}
	if prev == StatusPending {
		msgs = append(msgs, removedMessage(sr))
	}
	return append(msgs, s.rejectedMessages(sr, rejected)...)
}

func (s *Service) expiredMessages(sr *ServiceRequest, rejected []Proposal) []notification.Message {
	msgs := []notification.Message{
		{
			UserIDs:          []int64{sr.ClientID},
			Type:             notification.TypeRequestExpired,
			Text:             fmt.Sprintf("Service request #%d expired without being scheduled", sr.ID),
			ServiceRequestID: &sr.ID,
			Event:            Event{Type: EventUpdated, ServiceRequest: sr},
		},
		removedMessage(sr),
	}
	return append(msgs, s.rejectedMessages(sr, rejected)...)
}

func technicianIDs(sr *ServiceRequest) []int64 {
	if sr.TechnicianID == nil {
		return nil
	}
	return []int64{*sr.TechnicianID}
}
