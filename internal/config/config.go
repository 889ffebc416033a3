package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
	defaultDSN       = "myhometech.db"
)

type Config struct {
	AppEnv   string         `mapstructure:"app_env"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig enables the cross-instance push relay when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// SMTPConfig enables the email channel when Host is set.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type ScheduleConfig struct {
	RequestTTL      time.Duration `mapstructure:"request_ttl"`
	ProposalCap     int           `mapstructure:"proposal_cap"`
	ProposalSpacing time.Duration `mapstructure:"proposal_spacing"`
	WorkdayStart    string        `mapstructure:"workday_start"`
	WorkdayEnd      string        `mapstructure:"workday_end"`
	Timezone        string        `mapstructure:"timezone"`
	Slot            time.Duration `mapstructure:"slot"`
	ExpirySweepSpec string        `mapstructure:"expiry_sweep_spec"`
}

// NotifyConfig controls purging of read notifications.
type NotifyConfig struct {
	Retention   time.Duration `mapstructure:"retention"`
	CleanupSpec string        `mapstructure:"cleanup_spec"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.Server.AllowedOrigins = splitList(v.GetString("server.allowed_origins"))

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "dev")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.dsn", defaultDSN)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.access_ttl", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("redis.channel", "myhometech:push")
	v.SetDefault("smtp.port", 587)

	v.SetDefault("schedule.request_ttl", "24h")
	v.SetDefault("schedule.proposal_cap", 3)
	v.SetDefault("schedule.proposal_spacing", "30m")
	v.SetDefault("schedule.workday_start", "06:00")
	v.SetDefault("schedule.workday_end", "18:00")
	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.slot", "2h")
	v.SetDefault("schedule.expiry_sweep_spec", "@every 5m")

	v.SetDefault("notify.retention", "720h")
	v.SetDefault("notify.cleanup_spec", "@daily")
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("app_env", "APP_ENV", "ENV")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("server.shutdown_timeout", "SHUTDOWN_TIMEOUT")
	v.BindEnv("server.allowed_origins", "CORS_ALLOWED_ORIGINS")

	v.BindEnv("database.dsn", "DATABASE_URL")
	v.BindEnv("database.max_open_conns", "DB_MAX_OPEN_CONNS")

	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.access_ttl", "JWT_ACCESS_TTL")

	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.channel", "REDIS_CHANNEL")

	v.BindEnv("smtp.host", "SMTP_HOST")
	v.BindEnv("smtp.port", "SMTP_PORT")
	v.BindEnv("smtp.username", "SMTP_USERNAME")
	v.BindEnv("smtp.password", "SMTP_PASSWORD")
	v.BindEnv("smtp.from", "SMTP_FROM")

	v.BindEnv("schedule.request_ttl", "REQUEST_TTL")
	v.BindEnv("schedule.proposal_cap", "PROPOSAL_CAP")
	v.BindEnv("schedule.proposal_spacing", "PROPOSAL_SPACING")
	v.BindEnv("schedule.workday_start", "WORKDAY_START")
	v.BindEnv("schedule.workday_end", "WORKDAY_END")
	v.BindEnv("schedule.timezone", "WORKING_HOURS_TZ")
	v.BindEnv("schedule.slot", "SCHEDULE_SLOT")
	v.BindEnv("schedule.expiry_sweep_spec", "EXPIRY_SWEEP_SPEC")

	v.BindEnv("notify.retention", "NOTIFICATION_RETENTION")
	v.BindEnv("notify.cleanup_spec", "NOTIFICATION_CLEANUP_SPEC")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
