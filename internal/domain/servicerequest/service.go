package servicerequest

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"myhometech/internal/domain/notification"
	"myhometech/internal/logger"
	"myhometech/internal/pkg/apperr"
)

type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Create(ctx context.Context, sr *ServiceRequest) error
	GetByID(ctx context.Context, id int64) (*ServiceRequest, error)
	LockByID(ctx context.Context, id int64) (*ServiceRequest, error)
	List(ctx context.Context, f ListFilter) ([]ServiceRequest, error)
	ListAvailable(ctx context.Context, technicianID int64, now time.Time, proposalCap, limit, offset int) ([]ServiceRequest, error)
	HasScheduledOverlap(ctx context.Context, technicianID int64, at time.Time, slot time.Duration, excludeID int64) (bool, error)
	TransitionStatus(ctx context.Context, id int64, from []Status, to Status, updates map[string]any) (bool, error)
	ListStalePending(ctx context.Context, now time.Time, limit int) ([]ServiceRequest, error)
	CreateProposal(ctx context.Context, p *Proposal) error
	GetProposal(ctx context.Context, id int64) (*Proposal, error)
	ListProposals(ctx context.Context, requestID, technicianID int64) ([]Proposal, error)
	ResolveProposal(ctx context.Context, id int64, to ProposalStatus, now time.Time) (bool, error)
	RejectPendingProposals(ctx context.Context, requestID, exceptID int64, now time.Time) ([]Proposal, error)
}

type ApplianceLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type AddressLookup interface {
	OwnedBy(ctx context.Context, id, clientID int64) (bool, error)
}

// Dispatcher delivers notifications after the triggering transaction commits.
type Dispatcher interface {
	Dispatch(msgs ...notification.Message)
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
	expireBatch     = 100
)

type Service struct {
	store      Store
	appliances ApplianceLookup
	addresses  AddressLookup
	notifier   Dispatcher
	rules      Rules
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(store Store, appliances ApplianceLookup, addresses AddressLookup, notifier Dispatcher, rules Rules, l *zap.Logger) *Service {
	return &Service{
		store:      store,
		appliances: appliances,
		addresses:  addresses,
		notifier:   notifier,
		rules:      rules,
		logger:     logger.OrNop(l).Named("service_requests"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Rules() Rules {
	return s.rules
}

func (s *Service) notify(msgs ...notification.Message) {
	if s.notifier == nil || len(msgs) == 0 {
		return
	}
	s.notifier.Dispatch(msgs...)
}

func (s *Service) formatTime(t time.Time) string {
	return t.In(s.rules.location()).Format("2006-01-02 15:04 MST")
}

// Create opens a pending request that expires after the request TTL.
func (s *Service) Create(ctx context.Context, clientID int64, req CreateRequest) (*ServiceRequest, error) {
	now := s.now()
	when := req.ProposedDateTime.UTC()
	if err := s.rules.CheckDate(when, now); err != nil {
		return nil, err
	}

	ok, err := s.appliances.Exists(ctx, req.ApplianceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrApplianceNotFound
	}
	owned, err := s.addresses.OwnedBy(ctx, req.AddressID, clientID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrAddressNotFound
	}

	sr := &ServiceRequest{
		ClientID:         clientID,
		ApplianceID:      req.ApplianceID,
		AddressID:        req.AddressID,
		Description:      strings.TrimSpace(req.Description),
		ProposedDateTime: when,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(s.rules.RequestTTL),
	}
	if err := s.store.Create(ctx, sr); err != nil {
		return nil, err
	}

	s.logger.Info("service request created",
		zap.Int64("service_request_id", sr.ID),
		zap.Int64("client_id", clientID),
	)
	s.notify(s.createdMessages(sr)...)
	return sr, nil
}

// load reads a request and expires it first when it is pending past its expiry.
func (s *Service) load(ctx context.Context, id int64) (*ServiceRequest, error) {
	sr, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sr.Stale(s.now()) {
		sr, _, err = s.expire(ctx, sr.ID)
		if err != nil {
			return nil, err
		}
	}
	return sr, nil
}

// expire moves one pending request to expired and rejects its open proposals.
// It reports whether this call made the change.
func (s *Service) expire(ctx context.Context, id int64) (*ServiceRequest, bool, error) {
	now := s.now()
	var (
		changed  bool
		rejected []Proposal
		out      *ServiceRequest
	)
	err := s.store.Transaction(ctx, func(tx Store) error {
		ok, err := tx.TransitionStatus(ctx, id, []Status{StatusPending}, StatusExpired, nil)
		if err != nil {
			return err
		}
		if ok {
			changed = true
			if rejected, err = tx.RejectPendingProposals(ctx, id, 0, now); err != nil {
				return err
			}
		}
		out, err = tx.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if changed {
		s.notify(s.expiredMessages(out, rejected)...)
	}
	return out, changed, nil
}

// ExpireStale expires every pending request past its expiry and returns how many changed.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	total := 0
	for {
		batch, err := s.store.ListStalePending(ctx, s.now(), expireBatch)
		if err != nil {
			return total, err
		}
		for _, sr := range batch {
			_, changed, err := s.expire(ctx, sr.ID)
			if err != nil {
				return total, err
			}
			if changed {
				total++
			}
		}
		if len(batch) < expireBatch {
			break
		}
	}
	if total > 0 {
		s.logger.Info("expired stale service requests", zap.Int("count", total))
	}
	return total, nil
}

func (s *Service) canView(sr *ServiceRequest, a Actor) bool {
	switch {
	case a.IsAdmin():
		return true
	case a.IsClient():
		return sr.ClientID == a.UserID
	case a.IsTechnician():
		return sr.AssignedTo(a.UserID) || sr.Status == StatusPending
	}
	return false
}

func (s *Service) Get(ctx context.Context, id int64, a Actor) (*ServiceRequest, error) {
	sr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(sr, a) {
		return nil, ErrNotFound
	}
	return sr, nil
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListMine returns the client's own requests, the technician's assigned
// requests, or every request for admins.
func (s *Service) ListMine(ctx context.Context, a Actor, status Status, limit, offset int) ([]ServiceRequest, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	limit, offset = pageBounds(limit, offset)
	f := ListFilter{Status: status, Limit: limit, Offset: offset}
	switch {
	case a.IsClient():
		f.ClientID = a.UserID
	case a.IsTechnician():
		f.TechnicianID = a.UserID
	case a.IsAdmin():
	default:
		return nil, ErrNotAllowed
	}

	items, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range items {
		if !items[i].Stale(now) {
			continue
		}
		fresh, _, err := s.expire(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i] = *fresh
	}
	if items == nil {
		items = []ServiceRequest{}
	}
	return items, nil
}

// AvailableFor lists open requests the technician can still accept or propose on.
func (s *Service) AvailableFor(ctx context.Context, technicianID int64, limit, offset int) ([]ServiceRequest, error) {
	limit, offset = pageBounds(limit, offset)
	items, err := s.store.ListAvailable(ctx, technicianID, s.now(), s.rules.ProposalCap, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []ServiceRequest{}
	}
	return items, nil
}

// ListProposals shows the owning client and admins every proposal; a
// technician only sees their own.
func (s *Service) ListProposals(ctx context.Context, requestID int64, a Actor) ([]Proposal, error) {
	sr, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var technicianID int64
	switch {
	case a.IsAdmin(), a.IsClient() && sr.ClientID == a.UserID:
	case a.IsTechnician():
		technicianID = a.UserID
	default:
		return nil, ErrNotFound
	}

	items, err := s.store.ListProposals(ctx, requestID, technicianID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Proposal{}
	}
	return items, nil
}

func (s *Service) checkOverlap(ctx context.Context, tx Store, technicianID int64, at time.Time, requestID int64) error {
	busy, err := tx.HasScheduledOverlap(ctx, technicianID, at, s.rules.Slot, requestID)
	if err != nil {
		return err
	}
	if busy {
		return ErrScheduleOverlap
	}
	return nil
}

// lockPending re-reads the request inside tx and insists it is still open.
func (s *Service) lockPending(ctx context.Context, tx Store, id int64, now time.Time) (*ServiceRequest, error) {
	cur, err := tx.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != StatusPending || cur.Stale(now) {
		return nil, ErrNotPending
	}
	return cur, nil
}

// AcceptDirectly assigns the technician at the client's proposed time.
func (s *Service) AcceptDirectly(ctx context.Context, id, technicianID int64) (*ServiceRequest, error) {
	sr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sr.Status != StatusPending {
		return nil, ErrNotPending
	}
	now := s.now()
	if !sr.ProposedDateTime.After(now) {
		return nil, ErrDateInPast
	}

	var (
		out      *ServiceRequest
		rejected []Proposal
	)
	err = s.store.Transaction(ctx, func(tx Store) error {
		cur, err := s.lockPending(ctx, tx, id, now)
		if err != nil {
			return err
		}
		if err := s.checkOverlap(ctx, tx, technicianID, cur.ProposedDateTime, cur.ID); err != nil {
			return err
		}
		ok, err := tx.TransitionStatus(ctx, id, []Status{StatusPending}, StatusScheduled, map[string]any{
			"technician_id": technicianID,
			"scheduled_at":  cur.ProposedDateTime,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		if rejected, err = tx.RejectPendingProposals(ctx, id, 0, now); err != nil {
			return err
		}
		out, err = tx.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service request accepted",
		zap.Int64("service_request_id", id),
		zap.Int64("technician_id", technicianID),
	)
	s.notify(s.scheduledMessages(out, rejected)...)
	return out, nil
}

// ProposeAlternativeDate records a technician's counter-offer on a pending request.
func (s *Service) ProposeAlternativeDate(ctx context.Context, id, technicianID int64, req ProposeRequest) (*ProposalResult, error) {
	sr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sr.Status != StatusPending {
		return nil, ErrNotPending
	}
	now := s.now()
	when := req.NewDateTime.UTC()
	if err := s.rules.CheckDate(when, now); err != nil {
		return nil, err
	}

	var p *Proposal
	err = s.store.Transaction(ctx, func(tx Store) error {
		cur, err := s.lockPending(ctx, tx, id, now)
		if err != nil {
			return err
		}
		earlier, err := tx.ListProposals(ctx, id, technicianID)
		if err != nil {
			return err
		}
		if err := s.rules.CheckProposal(earlier, when); err != nil {
			return err
		}
		if err := s.checkOverlap(ctx, tx, technicianID, when, cur.ID); err != nil {
			return err
		}
		p = &Proposal{
			ServiceRequestID: id,
			TechnicianID:     technicianID,
			ProposedDateTime: when,
			Status:           ProposalPending,
			Comment:          strings.TrimSpace(req.Comment),
			ProposalCount:    len(earlier) + 1,
			CreatedAt:        now,
		}
		if err := tx.CreateProposal(ctx, p); err != nil {
			if apperr.IsUniqueViolation(err) {
				return ErrConcurrentUpdate
			}
			return err
		}
		sr = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("alternative date proposed",
		zap.Int64("service_request_id", id),
		zap.Int64("proposal_id", p.ID),
		zap.Int("proposal_count", p.ProposalCount),
	)
	s.notify(s.proposalCreatedMessages(sr, p)...)
	return &ProposalResult{Proposal: p, ServiceRequest: sr}, nil
}

// ownedProposal loads a proposal and its request, hiding proposals on other
// clients' requests.
func (s *Service) ownedProposal(ctx context.Context, proposalID, clientID int64) (*Proposal, *ServiceRequest, error) {
	p, err := s.store.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, nil, err
	}
	sr, err := s.load(ctx, p.ServiceRequestID)
	if err != nil {
		return nil, nil, err
	}
	if sr.ClientID != clientID {
		return nil, nil, ErrProposalNotFound
	}
	if sr.Status == StatusExpired && p.Status == ProposalPending {
		// load just expired the request and rejected its proposals.
		if p, err = s.store.GetProposal(ctx, proposalID); err != nil {
			return nil, nil, err
		}
	}
	if p.Status != ProposalPending {
		return nil, nil, ErrProposalResolved
	}
	return p, sr, nil
}

// AcceptAlternativeDateProposal schedules the parent request at the proposal's
// time with the proposing technician. Every other pending proposal is rejected.
func (s *Service) AcceptAlternativeDateProposal(ctx context.Context, proposalID, clientID int64) (*ProposalResult, error) {
	p, sr, err := s.ownedProposal(ctx, proposalID, clientID)
	if err != nil {
		return nil, err
	}
	if sr.Status != StatusPending {
		return nil, ErrNotPending
	}
	now := s.now()
	if !p.ProposedDateTime.After(now) {
		return nil, ErrProposalOutdated
	}

	var (
		out      *ServiceRequest
		accepted *Proposal
		rejected []Proposal
	)
	err = s.store.Transaction(ctx, func(tx Store) error {
		cur, err := s.lockPending(ctx, tx, sr.ID, now)
		if err != nil {
			return err
		}
		if err := s.checkOverlap(ctx, tx, p.TechnicianID, p.ProposedDateTime, cur.ID); err != nil {
			return err
		}
		ok, err := tx.ResolveProposal(ctx, p.ID, ProposalAccepted, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		ok, err = tx.TransitionStatus(ctx, cur.ID, []Status{StatusPending}, StatusScheduled, map[string]any{
			"technician_id": p.TechnicianID,
			"scheduled_at":  p.ProposedDateTime,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		if rejected, err = tx.RejectPendingProposals(ctx, cur.ID, p.ID, now); err != nil {
			return err
		}
		if out, err = tx.GetByID(ctx, cur.ID); err != nil {
			return err
		}
		accepted, err = tx.GetProposal(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("proposal accepted",
		zap.Int64("service_request_id", out.ID),
		zap.Int64("proposal_id", accepted.ID),
		zap.Int64("technician_id", accepted.TechnicianID),
	)
	s.notify(s.proposalAcceptedMessages(out, accepted, rejected)...)
	return &ProposalResult{Proposal: accepted, ServiceRequest: out}, nil
}

// RejectAlternativeDateProposal declines one proposal; the request stays pending.
func (s *Service) RejectAlternativeDateProposal(ctx context.Context, proposalID, clientID int64) (*ProposalResult, error) {
	p, sr, err := s.ownedProposal(ctx, proposalID, clientID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ok, err := s.store.ResolveProposal(ctx, p.ID, ProposalRejected, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}
	p.Status = ProposalRejected
	p.ResolvedAt = &now

	s.notify(s.rejectedMessages(sr, []Proposal{*p})...)
	return &ProposalResult{Proposal: p, ServiceRequest: sr}, nil
}

// CompleteByClient closes a scheduled request.
func (s *Service) CompleteByClient(ctx context.Context, id, clientID int64) (*ServiceRequest, error) {
	sr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sr.ClientID != clientID {
		return nil, ErrNotFound
	}
	if !CanTransition(sr.Status, StatusCompleted) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	ok, err := s.store.TransitionStatus(ctx, id, []Status{StatusScheduled}, StatusCompleted, map[string]any{
		"completed_at": now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentUpdate
	}
	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("service request completed", zap.Int64("service_request_id", id))
	s.notify(s.completedMessages(out)...)
	return out, nil
}

// Cancel is open to the owning client, the assigned technician and admins.
// Cancelling a scheduled request frees the technician's slot.
func (s *Service) Cancel(ctx context.Context, id int64, a Actor, reason string) (*ServiceRequest, error) {
	sr, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(sr, a) {
		return nil, ErrNotFound
	}
	if !a.IsAdmin() && sr.ClientID != a.UserID && !sr.AssignedTo(a.UserID) {
		return nil, ErrNotAllowed
	}
	if !CanTransition(sr.Status, StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	updates := map[string]any{
		"cancelled_at": now,
		"scheduled_at": nil,
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		updates["cancellation_reason"] = reason
	}

	var (
		out      *ServiceRequest
		rejected []Proposal
	)
	err = s.store.Transaction(ctx, func(tx Store) error {
		ok, err := tx.TransitionStatus(ctx, id, []Status{sr.Status}, StatusCancelled, updates)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		if rejected, err = tx.RejectPendingProposals(ctx, id, 0, now); err != nil {
			return err
		}
		out, err = tx.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service request cancelled",
		zap.Int64("service_request_id", id),
		zap.Int64("actor_id", a.UserID),
		zap.String("previous_status", string(sr.Status)),
	)
	s.notify(s.cancelledMessages(out, sr.Status, a, rejected)...)
	return out, nil
}
