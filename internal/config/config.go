package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	BodyLimitMB  int           `yaml:"body_limit_mb"`
	CORSOrigins  string        `yaml:"cors_origins"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

type JWTCfg struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type MongoCfg struct {
	URI             string `yaml:"uri"`
	Database        string `yaml:"database"`
	ConnectAttempts int    `yaml:"connect_attempts"`
}

type RedisCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SecurityCfg struct {
	PasswordHashCost int           `yaml:"password_hash_cost"`
	OtpTTL           time.Duration `yaml:"otp_ttl"`
	OtpRateLimit     int           `yaml:"otp_rate_limit"`
	OtpRateWindow    time.Duration `yaml:"otp_rate_window"`
}

type EmailCfg struct {
	Provider     string `yaml:"provider"` // brevo | smtp
	BrevoAPIKey  string `yaml:"brevo_api_key"`
	FromEmail    string `yaml:"from_email"`
	FromName     string `yaml:"from_name"`
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
}

type S3Cfg struct {
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	Endpoint      string `yaml:"endpoint"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type KafkaCfg struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type SentryCfg struct {
	DSN              string  `yaml:"dsn"`
	TracesSampleRate float64 `yaml:"traces_sample_rate"`
}

type WSCfg struct {
	PingInterval   time.Duration `yaml:"ping_interval"`
	WriteDeadline  time.Duration `yaml:"write_deadline"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	InboundRPS     int           `yaml:"inbound_rps"`
	SendBuffer     int           `yaml:"send_buffer"`
}

type Config struct {
	App      AppCfg      `yaml:"app"`
	JWT      JWTCfg      `yaml:"jwt"`
	Mongo    MongoCfg    `yaml:"mongo"`
	Redis    RedisCfg    `yaml:"redis"`
	Security SecurityCfg `yaml:"security"`
	Email    EmailCfg    `yaml:"email"`
	S3       S3Cfg       `yaml:"s3"`
	Kafka    KafkaCfg    `yaml:"kafka"`
	Sentry   SentryCfg   `yaml:"sentry"`
	WS       WSCfg       `yaml:"ws"`
}

func defaults() *Config {
	return &Config{
		App: AppCfg{
			Env:          "development",
			Port:         8000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			BodyLimitMB:  10,
			CORSOrigins:  "http://localhost:5173",
		},
		JWT:   JWTCfg{TTL: 24 * time.Hour},
		Mongo: MongoCfg{Database: "campus", ConnectAttempts: 3},
		Security: SecurityCfg{
			PasswordHashCost: 10,
			OtpTTL:           15 * time.Minute,
			OtpRateLimit:     5,
			OtpRateWindow:    time.Hour,
		},
		Email: EmailCfg{Provider: "brevo", FromName: "HNB X", SMTPPort: 587},
		S3:    S3Cfg{Region: "ap-south-1"},
		Kafka: KafkaCfg{Topic: "campus.activity"},
		WS: WSCfg{
			PingInterval:   30 * time.Second,
			WriteDeadline:  10 * time.Second,
			MaxMessageSize: 64 * 1024,
			InboundRPS:     5,
			SendBuffer:     64,
		},
	}
}

// Load reads the YAML file at path (a missing file falls back to defaults)
// and applies environment overrides on top.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}
	atoi := func(dst *int) func(string) {
		return func(v string) {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	duration := func(dst *time.Duration) func(string) {
		return func(v string) {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	override("APP_ENV", func(v string) { cfg.App.Env = v })
	override("PORT", atoi(&cfg.App.Port))
	override("CORS_ORIGINS", func(v string) { cfg.App.CORSOrigins = v })
	override("COOKIE_SECURE", func(v string) { cfg.App.CookieSecure = v == "true" })

	override("SECRET_KEY", func(v string) { cfg.JWT.Secret = v })
	override("JWT_TTL", duration(&cfg.JWT.TTL))

	override("MONGO_URI", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })

	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	override("REDIS_DB", atoi(&cfg.Redis.DB))

	override("PASSWORD_HASH_COST", atoi(&cfg.Security.PasswordHashCost))
	override("OTP_TTL", duration(&cfg.Security.OtpTTL))
	override("OTP_RATE_LIMIT", atoi(&cfg.Security.OtpRateLimit))

	override("EMAIL_PROVIDER", func(v string) { cfg.Email.Provider = v })
	override("BREVO_API_KEY", func(v string) { cfg.Email.BrevoAPIKey = v })
	override("EMAIL_FROM", func(v string) { cfg.Email.FromEmail = v })
	override("SMTP_HOST", func(v string) { cfg.Email.SMTPHost = v })
	override("SMTP_PORT", atoi(&cfg.Email.SMTPPort))
	override("SMTP_USER", func(v string) { cfg.Email.SMTPUser = v })
	override("SMTP_PASSWORD", func(v string) { cfg.Email.SMTPPassword = v })

	override("AWS_REGION", func(v string) { cfg.S3.Region = v })
	override("S3_BUCKET", func(v string) { cfg.S3.Bucket = v })
	override("S3_ENDPOINT", func(v string) { cfg.S3.Endpoint = v })
	override("S3_PUBLIC_BASE_URL", func(v string) { cfg.S3.PublicBaseURL = v })

	override("KAFKA_BROKERS", func(v string) { cfg.Kafka.Brokers = strings.Split(v, ",") })
	override("KAFKA_TOPIC", func(v string) { cfg.Kafka.Topic = v })

	override("SENTRY_DSN", func(v string) { cfg.Sentry.DSN = v })
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("SECRET_KEY is required (set in .env or config.yaml)")
	}
	if c.Mongo.URI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.S3.Bucket == "" {
		return errors.New("S3_BUCKET is required")
	}
	switch c.Email.Provider {
	case "brevo":
		if c.Email.BrevoAPIKey == "" || c.Email.FromEmail == "" {
			return errors.New("brevo email provider requires BREVO_API_KEY and EMAIL_FROM")
		}
	case "smtp":
		if c.Email.SMTPHost == "" || c.Email.FromEmail == "" {
			return errors.New("smtp email provider requires SMTP_HOST and EMAIL_FROM")
		}
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}
	if c.Mongo.ConnectAttempts < 1 {
		c.Mongo.ConnectAttempts = 1
	}
	return nil
}

// IsDevelopment reports whether the service runs with development settings.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
