package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"relocation/internal/adapters/out/amqpbus"
	"relocation/internal/adapters/out/kafkamail"
	"relocation/internal/adapters/out/pgrelay"
	"relocation/internal/core/application/notifications"
	"relocation/internal/jobs"
	"relocation/internal/pkg/logging"

	"github.com/robfig/cron/v3"
)

type Storage string

const (
	StoragePostgres Storage = "postgres"
	StorageMemory   Storage = "memory"
)

type NotifierKind string

const (
	// NotifierWS pushes to web socket sessions of this instance only.
	NotifierWS NotifierKind = "ws"
	// NotifierPG publishes through Postgres NOTIFY; every instance relays to its sessions.
	NotifierPG NotifierKind = "pg"
	// NotifierAMQP publishes to a RabbitMQ topic exchange.
	NotifierAMQP NotifierKind = "amqp"
)

const (
	DefaultHTTPPort    = "8080"
	DefaultLockTimeout = 2 * time.Second
	DefaultOfferTTL    = 15 * time.Minute
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	Storage     Storage
	AutoMigrate bool
	LockTimeout time.Duration

	OfferTTL           time.Duration
	OfferSweepSchedule string
	ScheduleLocation   *time.Location

	Notifier        NotifierKind
	PGNotifyChannel string
	AMQPURL         string
	AMQPExchange    string
	KafkaBrokers    []string
	KafkaEmailTopic string
	NotifyTimeout   time.Duration

	LogLevel slog.Level
}

var sweepParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// LoadConfig reads the configuration through getenv, applying defaults for unset keys.
// Every invalid value is reported in the returned error.
func LoadConfig(getenv func(string) string) (Config, error) {
	var problems []error
	invalid := func(key, value string, cause error) {
		problems = append(problems, fmt.Errorf("%s=%q: %w", key, value, cause))
	}
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}
	duration := func(key string, fallback time.Duration) time.Duration {
		raw := get(key, "")
		if raw == "" {
			return fallback
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			invalid(key, raw, err)
			return fallback
		}
		if d <= 0 {
			invalid(key, raw, errors.New("must be positive"))
			return fallback
		}
		return d
	}

	cfg := Config{
		HTTPPort:           get("HTTP_PORT", DefaultHTTPPort),
		DBHost:             get("DB_HOST", ""),
		DBPort:             get("DB_PORT", "5432"),
		DBUser:             get("DB_USER", ""),
		DBPassword:         getenv("DB_PASSWORD"),
		DBName:             get("DB_NAME", ""),
		DBSslMode:          get("DB_SSLMODE", "disable"),
		Storage:            Storage(strings.ToLower(get("STORAGE", string(StoragePostgres)))),
		AutoMigrate:        true,
		LockTimeout:        duration("LOCK_TIMEOUT", DefaultLockTimeout),
		OfferTTL:           duration("OFFER_TTL", DefaultOfferTTL),
		OfferSweepSchedule: get("OFFER_SWEEP_SCHEDULE", jobs.DefaultOfferSweepSchedule),
		ScheduleLocation:   time.UTC,
		Notifier:           NotifierKind(strings.ToLower(get("NOTIFIER", string(NotifierWS)))),
		PGNotifyChannel:    get("PG_NOTIFY_CHANNEL", pgrelay.DefaultChannel),
		AMQPURL:            get("AMQP_URL", ""),
		AMQPExchange:       get("AMQP_EXCHANGE", amqpbus.DefaultExchange),
		KafkaEmailTopic:    get("KAFKA_EMAIL_TOPIC", kafkamail.DefaultTopic),
		NotifyTimeout:      duration("NOTIFY_TIMEOUT", notifications.DefaultTimeout),
	}

	if raw := get("AUTO_MIGRATE", ""); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid("AUTO_MIGRATE", raw, err)
		}
		cfg.AutoMigrate = v
	}

	if raw := get("SCHEDULE_TIMEZONE", ""); raw != "" {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			invalid("SCHEDULE_TIMEZONE", raw, err)
		} else {
			cfg.ScheduleLocation = loc
		}
	}

	if _, err := sweepParser.Parse(cfg.OfferSweepSchedule); err != nil {
		invalid("OFFER_SWEEP_SCHEDULE", cfg.OfferSweepSchedule, err)
	}

	level, err := logging.ParseLevel(getenv("LOG_LEVEL"))
	if err != nil {
		invalid("LOG_LEVEL", getenv("LOG_LEVEL"), err)
	}
	cfg.LogLevel = level

	for _, broker := range strings.Split(get("KAFKA_BROKERS", ""), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
		}
	}

	switch cfg.Storage {
	case StoragePostgres:
		for _, kv := range [][2]string{{"DB_HOST", cfg.DBHost}, {"DB_USER", cfg.DBUser}, {"DB_NAME", cfg.DBName}} {
			if kv[1] == "" {
				invalid(kv[0], kv[1], errors.New("required when STORAGE=postgres"))
			}
		}
	case StorageMemory:
	default:
		invalid("STORAGE", string(cfg.Storage), errors.New("must be postgres or memory"))
	}

	switch cfg.Notifier {
	case NotifierWS:
	case NotifierPG:
		if cfg.Storage != StoragePostgres {
			invalid("NOTIFIER", string(cfg.Notifier), errors.New("requires STORAGE=postgres"))
		}
	case NotifierAMQP:
		if cfg.AMQPURL == "" {
			invalid("AMQP_URL", cfg.AMQPURL, errors.New("required when NOTIFIER=amqp"))
		}
	default:
		invalid("NOTIFIER", string(cfg.Notifier), errors.New("must be ws, pg or amqp"))
	}

	return cfg, errors.Join(problems...)
}

// DSN is the Postgres connection string in URL form, accepted by both pgx and lib/pq.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSslMode}}.Encode(),
	}
	return u.String()
}
