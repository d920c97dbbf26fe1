package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"innkeep/pkg/client"
	"innkeep/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	HotelTimeZone       string
	HotelLocation       *time.Location
	ReferenceCodePrefix string
	PhoneRegions        []string

	LockBackend string
	LockTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	EventsBackend            string
	KafkaReservationTopic    string
	KafkaReservationDLQTopic string
	KafkaAuditGroupID        string
	RabbitMQURL              string
	RabbitMQQueue            string

	Log    *logger.Logger
	Client *client.Client
}

var (
	reMongoURI      = regexp.MustCompile(`^mongodb(\+srv)?://`)
	reCredentials   = regexp.MustCompile(`(mongodb(\+srv)?://|amqps?://)[^:/@]+:[^@]+@`)
	reReferencePref = regexp.MustCompile(`^[A-Z]{2,6}$`)
)

func Load(serviceName string) *Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		HotelTimeZone:       getEnvStr(EnvHotelTimeZone, DefaultHotelTimeZone),
		ReferenceCodePrefix: getEnvStr(EnvReferenceCodePrefix, DefaultReferenceCodePrefix),
		PhoneRegions:        getEnvList(EnvPhoneRegions, DefaultPhoneRegions),

		LockBackend: getEnvStr(EnvLockBackend, DefaultLockBackend),
		LockTTL:     getEnvDuration(EnvLockTTL, DefaultLockTTL),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		EventsBackend:            getEnvStr(EnvEventsBackend, DefaultEventsBackend),
		KafkaReservationTopic:    getEnvStr(EnvKafkaReservationTopic, DefaultKafkaReservationTopic),
		KafkaReservationDLQTopic: getEnvStr(EnvKafkaReservationDLQTopic, DefaultKafkaReservationDLQTopic),
		KafkaAuditGroupID:        getEnvStr(EnvKafkaAuditGroupID, DefaultKafkaAuditGroupID),
		RabbitMQURL:              getEnvStr(EnvRabbitMQURL, DefaultRabbitMQURL),
		RabbitMQQueue:            getEnvStr(EnvRabbitMQQueue, DefaultRabbitMQQueue),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

// Validate checks every setting and resolves HotelLocation. All problems are
// reported together.
func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !reMongoURI.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positive := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"LockTTL", cfg.LockTTL},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", p.name, p.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	loc, err := time.LoadLocation(cfg.HotelTimeZone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("HotelTimeZone must be a valid IANA zone, got: %s", cfg.HotelTimeZone))
	} else {
		cfg.HotelLocation = loc
	}

	if !reReferencePref.MatchString(cfg.ReferenceCodePrefix) {
		errors = append(errors, fmt.Sprintf("ReferenceCodePrefix must be 2-6 uppercase letters, got: %s", cfg.ReferenceCodePrefix))
	}
	if len(cfg.PhoneRegions) == 0 {
		errors = append(errors, "PhoneRegions must list at least one region")
	}

	switch cfg.LockBackend {
	case LockBackendMemory, LockBackendMongo, LockBackendRedis:
	default:
		errors = append(errors, fmt.Sprintf("LockBackend must be one of [memory, mongo, redis], got: %s", cfg.LockBackend))
	}
	if cfg.LockBackend == LockBackendRedis && cfg.RedisAddr == "" {
		errors = append(errors, "RedisAddr cannot be empty when LockBackend is redis")
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	switch cfg.EventsBackend {
	case EventsBackendNone:
	case EventsBackendKafka:
		if cfg.KafkaReservationTopic == "" {
			errors = append(errors, "KafkaReservationTopic cannot be empty when EventsBackend is kafka")
		}
	case EventsBackendRabbitMQ:
		if cfg.RabbitMQURL == "" || cfg.RabbitMQQueue == "" {
			errors = append(errors, "RabbitMQURL and RabbitMQQueue are required when EventsBackend is rabbitmq")
		}
	default:
		errors = append(errors, fmt.Sprintf("EventsBackend must be one of [none, kafka, rabbitmq], got: %s", cfg.EventsBackend))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"hotel_time_zone", cfg.HotelTimeZone,
		"reference_code_prefix", cfg.ReferenceCodePrefix,
		"phone_regions", cfg.PhoneRegions,
		"lock_backend", cfg.LockBackend,
		"lock_ttl", cfg.LockTTL,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"events_backend", cfg.EventsBackend,
		"kafka_reservation_topic", cfg.KafkaReservationTopic,
		"rabbitmq_url", redactURI(cfg.RabbitMQURL),
		"rabbitmq_queue", cfg.RabbitMQQueue,
	)
}

func redactURI(uri string) string {
	return reCredentials.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
