package admin

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"myhometech/internal/domain/auth"
)

const topTechniciansLimit = 10

type ReportStore interface {
	RequestsByStatus(ctx context.Context) (map[string]int64, error)
	ProposalStats(ctx context.Context) (ProposalStats, error)
	TopTechnicians(ctx context.Context, limit int) ([]TechnicianStat, error)
	ExportRows(ctx context.Context, f ExportFilter) ([]ExportRow, error)
}

type UserCounter interface {
	CountByRole(ctx context.Context) (map[auth.UserRole]int64, error)
}

// Expirer runs the stale pending request sweep.
type Expirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

type Service struct {
	reports ReportStore
	users   UserCounter
	expirer Expirer
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(reports ReportStore, users UserCounter, expirer Expirer, l *zap.Logger) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		reports: reports,
		users:   users,
		expirer: expirer,
		logger:  l,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var (
		byStatus  map[string]int64
		proposals ProposalStats
		top       []TechnicianStat
		roles     map[auth.UserRole]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byStatus, err = s.reports.RequestsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		proposals, err = s.reports.ProposalStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.reports.TopTechnicians(gctx, topTechniciansLimit)
		return err
	})
	g.Go(func() (err error) {
		roles, err = s.users.CountByRole(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Summary{
		GeneratedAt:      s.now(),
		RequestsByStatus: byStatus,
		Proposals:        proposals,
		TopTechnicians:   top,
		UsersByRole:      make(map[string]int64, len(roles)),
	}
	if out.TopTechnicians == nil {
		out.TopTechnicians = []TechnicianStat{}
	}
	for _, n := range byStatus {
		out.TotalRequests += n
	}
	for role, n := range roles {
		out.UsersByRole[string(role)] = n
	}
	return out, nil
}

// ExpireNow triggers the expiry sweep outside its schedule.
func (s *Service) ExpireNow(ctx context.Context) (*ExpireResult, error) {
	n, err := s.expirer.ExpireStale(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("manual expiry sweep", zap.Int("expired", n))
	return &ExpireResult{Expired: n}, nil
}
