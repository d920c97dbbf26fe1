package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvHotelTimeZone       = "HOTEL_TIME_ZONE"
	EnvReferenceCodePrefix = "REFERENCE_CODE_PREFIX"
	EnvPhoneRegions        = "PHONE_REGIONS"

	EnvLockBackend = "LOCK_BACKEND"
	EnvLockTTL     = "LOCK_TTL"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvEventsBackend            = "EVENTS_BACKEND"
	EnvKafkaReservationTopic    = "KAFKA_RESERVATION_TOPIC"
	EnvKafkaReservationDLQTopic = "KAFKA_RESERVATION_DLQ_TOPIC"
	EnvKafkaAuditGroupID        = "KAFKA_AUDIT_GROUP_ID"
	EnvRabbitMQURL              = "RABBITMQ_URL"
	EnvRabbitMQQueue            = "RABBITMQ_QUEUE"
)
