package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/quickbasket/storefront/pkg/aws"
)

type Config struct {
	Port           string
	AppEnv         string
	BaseURL        string
	Currency       string
	AllowedOrigins []string

	RateLimitPerMinute int
	RateLimitBurst     int

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	MongoURI string
	MongoDB  string
	RedisURL string

	StripeAPIKey        string
	StripeWebhookSecret string

	FreeShippingThresholdCents int64
	FlatShippingFeeCents       int64
	TaxRateBps                 int64
	CartTTL                    time.Duration
	DeliveryEstimateDays       int

	EventBus             string
	OrderEventsTopicARN  string
	NotificationQueueURL string
	KafkaBrokers         string
	OrderEventsTopic     string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	AdminAPIKey string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		Currency:       getEnv("CURRENCY", "usd"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		RateLimitPerMinute: int(getEnvInt64("RATE_LIMIT_PER_MINUTE", 120)),
		RateLimitBurst:     int(getEnvInt64("RATE_LIMIT_BURST", 30)),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "storefront"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		StripeAPIKey:        os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		FreeShippingThresholdCents: getEnvInt64("FREE_SHIPPING_THRESHOLD_CENTS", 10000),
		FlatShippingFeeCents:       getEnvInt64("FLAT_SHIPPING_FEE_CENTS", 700),
		TaxRateBps:                 getEnvInt64("TAX_RATE_BPS", 875),
		CartTTL:                    getEnvDuration("CART_TTL", 30*24*time.Hour),
		DeliveryEstimateDays:       int(getEnvInt64("DELIVERY_ESTIMATE_DAYS", 5)),

		EventBus:             getEnv("EVENT_BUS", "sns"),
		OrderEventsTopicARN:  os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		NotificationQueueURL: os.Getenv("NOTIFICATION_QUEUE_URL"),
		KafkaBrokers:         os.Getenv("KAFKA_BROKERS"),
		OrderEventsTopic:     getEnv("ORDER_EVENTS_TOPIC", "order.created"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASS"),
		SMTPFrom:     getEnv("SMTP_FROM", "orders@quickbasket.dev"),

		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)

			if dbjson, err := sm.GetSecret(context.Background(), "storefront/DB_CREDENTIALS"); err == nil && dbjson != "" {
				var m map[string]string
				if err := json.Unmarshal([]byte(dbjson), &m); err == nil {
					if v, ok := m["POSTGRES_USER"]; ok && v != "" {
						cfg.PostgresUser = v
					}
					if v, ok := m["POSTGRES_PASSWORD"]; ok && v != "" {
						cfg.PostgresPassword = v
					}
					if v, ok := m["POSTGRES_DB"]; ok && v != "" {
						cfg.PostgresDB = v
					}
					if v, ok := m["POSTGRES_HOST"]; ok && v != "" {
						cfg.PostgresHost = v
					}
					if v, ok := m["POSTGRES_PORT"]; ok && v != "" {
						cfg.PostgresPort = v
					}
				}
			}

			if key, err := sm.GetSecret(context.Background(), "storefront/STRIPE_API_KEY"); err == nil && key != "" {
				cfg.StripeAPIKey = key
			}
			if secret, err := sm.GetSecret(context.Background(), "storefront/STRIPE_WEBHOOK_SECRET"); err == nil && secret != "" {
				cfg.StripeWebhookSecret = secret
			}
		}
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.StripeAPIKey == "" {
		return nil, fmt.Errorf("STRIPE_API_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.EventBus != "sns" && cfg.EventBus != "kafka" {
		return nil, fmt.Errorf("EVENT_BUS must be sns or kafka, got %q", cfg.EventBus)
	}
	if cfg.EventBus == "sns" && cfg.OrderEventsTopicARN == "" {
		return nil, fmt.Errorf("ORDER_EVENTS_TOPIC_ARN is required when EVENT_BUS=sns")
	}
	if cfg.EventBus == "kafka" && cfg.KafkaBrokers == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS is required when EVENT_BUS=kafka")
	}
	if cfg.TaxRateBps < 0 || cfg.TaxRateBps > 10000 {
		return nil, fmt.Errorf("TAX_RATE_BPS must be between 0 and 10000")
	}
	if cfg.RateLimitPerMinute < 1 || cfg.RateLimitBurst < 1 {
		return nil, fmt.Errorf("rate limit settings must be positive")
	}
	return cfg, nil
}

// PostgresDSN builds the gorm connection string from the loaded values.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone)
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
