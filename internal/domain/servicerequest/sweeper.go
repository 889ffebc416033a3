package servicerequest

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"myhometech/internal/logger"
)

const jobTimeout = 2 * time.Minute

// Expirer is satisfied by Service.
type Expirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

// Sweeper runs periodic maintenance jobs on a cron schedule. Overlapping runs
// of the same job are skipped.
type Sweeper struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewSweeper(l *zap.Logger) *Sweeper {
	l = logger.OrNop(l).Named("sweeper")
	cl := cronLogger{l.Sugar()}
	return &Sweeper{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: l,
	}
}

// AddExpiry schedules ExpireStale on spec (e.g. "@every 5m").
func (s *Sweeper) AddExpiry(spec string, e Expirer) error {
	return s.AddJob(spec, "expire_stale", func(ctx context.Context) error {
		_, err := e.ExpireStale(ctx)
		return err
	})
}

// AddJob schedules fn on spec. Each run gets its own timeout.
func (s *Sweeper) AddJob(spec, name string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		start := time.Now()
		if err := fn(ctx); err != nil {
			s.logger.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.logger.Debug("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	})
	return err
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
