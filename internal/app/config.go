package app

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/studypulse-backend/internal/data/db"
	"github.com/yungbote/studypulse-backend/internal/jobs/rollover"
	"github.com/yungbote/studypulse-backend/internal/observability"
	"github.com/yungbote/studypulse-backend/internal/platform/envutil"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

const configPathEnv = "STUDYPULSE_CONFIG"

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
	// PingInterval drives the redis health gauges on /metrics.
	PingInterval time.Duration `yaml:"ping_interval"`
}

type Config struct {
	Port    string `yaml:"port"`
	LogMode string `yaml:"log_mode"`

	DB    db.Config   `yaml:"db"`
	Redis RedisConfig `yaml:"redis"`

	JWTSecretKey string   `yaml:"jwt_secret_key"`
	CORSOrigins  []string `yaml:"cors_origins"`

	// Timezone is an IANA name; day and week boundaries use it.
	Timezone          string  `yaml:"timezone"`
	GradeTarget       float64 `yaml:"grade_target"`
	PerformanceTarget float64 `yaml:"performance_target"`
	RolloverSpec      string  `yaml:"rollover_spec"`

	MetricsEnabled bool                     `yaml:"metrics_enabled"`
	Otel           observability.OtelConfig `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		Port:    "8080",
		LogMode: "development",
		DB: db.Config{
			Driver: db.DriverPostgres,
			Host:   "localhost",
			Port:   "5432",
			User:   "postgres",
			Name:   "studypulse",
		},
		Redis: RedisConfig{
			Channel:      "studypulse:progress",
			PingInterval: 15 * time.Second,
		},
		JWTSecretKey:      "defaultsecret",
		Timezone:          "Local",
		GradeTarget:       5.5,
		PerformanceTarget: 7.0,
		RolloverSpec:      rollover.DefaultSpec,
		Otel: observability.OtelConfig{
			ServiceName: "studypulse-backend",
			Environment: "development",
			SampleRatio: 0.1,
		},
	}
}

// LoadConfig applies defaults, then the YAML file named by
// STUDYPULSE_CONFIG, then environment overrides.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv(configPathEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	applyEnv(&cfg)

	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	if cfg.GradeTarget < 0 || cfg.GradeTarget > 10 {
		return Config{}, fmt.Errorf("grade target %v out of range 0..10", cfg.GradeTarget)
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	cfg.DB.Driver = envutil.String("DB_DRIVER", cfg.DB.Driver)
	cfg.DB.DSN = envutil.String("DATABASE_URL", cfg.DB.DSN)
	cfg.DB.Host = envutil.String("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envutil.String("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envutil.String("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Password = envutil.String("POSTGRES_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = envutil.String("POSTGRES_NAME", cfg.DB.Name)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)
	cfg.Redis.PingInterval = envutil.Duration("REDIS_PING_INTERVAL", cfg.Redis.PingInterval)

	cfg.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.JWTSecretKey)
	cfg.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.CORSOrigins)

	cfg.Timezone = envutil.String("STUDYPULSE_TIMEZONE", cfg.Timezone)
	cfg.GradeTarget = envutil.Float("GRADE_TARGET", cfg.GradeTarget)
	cfg.PerformanceTarget = envutil.Float("PERFORMANCE_TARGET", cfg.PerformanceTarget)
	cfg.RolloverSpec = envutil.String("ROLLOVER_SPEC", cfg.RolloverSpec)

	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Version = envutil.String("OTEL_SERVICE_VERSION", cfg.Otel.Version)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLE_RATIO", cfg.Otel.SampleRatio)
	if raw := envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""); raw != "" {
		cfg.Otel.Headers = observability.ParseHeaders(raw)
	}
}

// Location resolves Timezone; "Local" and "" mean the process zone.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}

func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
