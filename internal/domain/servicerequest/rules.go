package servicerequest

import (
	"time"

	"myhometech/internal/config"
)

// Rules holds the scheduling constraints of the request workflow.
type Rules struct {
	RequestTTL      time.Duration
	ProposalCap     int
	ProposalSpacing time.Duration
	// WorkdayStart and WorkdayEnd are offsets from local midnight; both ends are inclusive.
	WorkdayStart time.Duration
	WorkdayEnd   time.Duration
	Location     *time.Location
	// Slot is how long a scheduled job blocks the technician's calendar.
	Slot time.Duration
}

func DefaultRules() Rules {
	return Rules{
		RequestTTL:      24 * time.Hour,
		ProposalCap:     3,
		ProposalSpacing: 30 * time.Minute,
		WorkdayStart:    6 * time.Hour,
		WorkdayEnd:      18 * time.Hour,
		Location:        time.UTC,
		Slot:            2 * time.Hour,
	}
}

func RulesFromConfig(cfg config.ScheduleConfig) (Rules, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Rules{}, err
	}
	start, end, err := cfg.WorkdayBounds()
	if err != nil {
		return Rules{}, err
	}
	return Rules{
		RequestTTL:      cfg.RequestTTL,
		ProposalCap:     cfg.ProposalCap,
		ProposalSpacing: cfg.ProposalSpacing,
		WorkdayStart:    start,
		WorkdayEnd:      end,
		Location:        loc,
		Slot:            cfg.Slot,
	}, nil
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// WithinWorkingHours reports whether t falls inside the daily window.
func (r Rules) WithinWorkingHours(t time.Time) bool {
	lt := t.In(r.location())
	offset := time.Duration(lt.Hour())*time.Hour +
		time.Duration(lt.Minute())*time.Minute +
		time.Duration(lt.Second())*time.Second +
		time.Duration(lt.Nanosecond())
	return offset >= r.WorkdayStart && offset <= r.WorkdayEnd
}

// CheckDate validates a requested or proposed appointment time.
func (r Rules) CheckDate(t, now time.Time) error {
	if !t.After(now) {
		return ErrDateInPast
	}
	if !r.WithinWorkingHours(t) {
		return ErrOutsideWorkingHours.WithDetails(map[string]string{
			"window":   formatOffset(r.WorkdayStart) + "-" + formatOffset(r.WorkdayEnd),
			"timezone": r.location().String(),
		})
	}
	return nil
}

// CheckProposal applies the per-technician cap and spacing against that
// technician's earlier proposals on the same request.
func (r Rules) CheckProposal(earlier []Proposal, at time.Time) error {
	if len(earlier) >= r.ProposalCap {
		return ErrProposalCap
	}
	for _, p := range earlier {
		diff := p.ProposedDateTime.Sub(at)
		if diff < 0 {
			diff = -diff
		}
		if diff < r.ProposalSpacing {
			return ErrProposalSpacing
		}
	}
	return nil
}

func formatOffset(d time.Duration) string {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("15:04")
}
