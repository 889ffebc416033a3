package config

import (
	"fmt"
	"strings"
	"time"
)

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("PORT must be in 1..65535")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWT.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}

	s := cfg.Schedule
	if s.RequestTTL <= 0 {
		return fmt.Errorf("REQUEST_TTL must be > 0")
	}
	if s.ProposalCap <= 0 {
		return fmt.Errorf("PROPOSAL_CAP must be > 0")
	}
	if s.ProposalSpacing < 0 {
		return fmt.Errorf("PROPOSAL_SPACING must be >= 0")
	}
	if s.Slot <= 0 {
		return fmt.Errorf("SCHEDULE_SLOT must be > 0")
	}
	if strings.TrimSpace(s.ExpirySweepSpec) == "" {
		return fmt.Errorf("EXPIRY_SWEEP_SPEC must not be empty")
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	start, end, err := s.WorkdayBounds()
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("WORKDAY_START must be before WORKDAY_END")
	}

	if cfg.Notify.Retention <= 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION must be > 0")
	}

	if cfg.SMTP.Host != "" && cfg.SMTP.From == "" {
		return fmt.Errorf("SMTP_FROM must be set when SMTP_HOST is set")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWT.Secret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.Database.DSN, defaultDSN) {
			return fmt.Errorf("in prod/release DATABASE_URL must point at PostgreSQL")
		}
	}
	return nil
}

// Location resolves the time zone the working window is measured in.
func (s ScheduleConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKING_HOURS_TZ value %q: %w", name, err)
	}
	return loc, nil
}

// WorkdayBounds returns the working window as offsets from midnight.
func (s ScheduleConfig) WorkdayBounds() (time.Duration, time.Duration, error) {
	start, err := parseClock("WORKDAY_START", s.WorkdayStart)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock("WORKDAY_END", s.WorkdayEnd)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseClock(name, value string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: expected HH:MM", name, value)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
