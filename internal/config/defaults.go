package config

import "time"

// Default values applied by ApplyDefaults.  Every tunable that has a safe
// production default is named here so operators only override what differs.
const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 20 * time.Second

	DefaultDatabasePort    = 5432
	DefaultDatabaseSSLMode = "disable"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultConnMaxLifetime = 30 * time.Minute
	DefaultMigrationsPath  = "migrations"

	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolSize     = 10

	DefaultCacheBackend = "memory"

	// DefaultCacheTTL keeps retrieval results fresh for five minutes;
	// staler entries are recomputed on the next request.
	DefaultCacheTTL = 5 * time.Minute

	DefaultKafkaClientID     = "docrisk"
	DefaultKafkaWriteTimeout = 10 * time.Second

	DefaultRequestTimeout = 10 * time.Second

	// DefaultMaxRetries and DefaultRetryBaseDelay produce the retry
	// sequence 1s, 2s, 4s before a fetch is declared failed.
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 1 * time.Second

	DefaultWorkerConcurrency = 8

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-valued field that has a documented default.
// Called by the loader after unmarshalling and before Validate.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultDatabasePort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDatabaseSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = DefaultMigrationsPath
	}

	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = DefaultRedisReadTimeout
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = DefaultRedisWriteTimeout
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = DefaultRedisPoolSize
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = DefaultKafkaClientID
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}

	if c.Retrieval.RequestTimeout == 0 {
		c.Retrieval.RequestTimeout = DefaultRequestTimeout
	}
	if c.Retrieval.MaxRetries == 0 {
		c.Retrieval.MaxRetries = DefaultMaxRetries
	}
	if c.Retrieval.RetryBaseDelay == 0 {
		c.Retrieval.RetryBaseDelay = DefaultRetryBaseDelay
	}

	if c.Worker.Concurrency == 0 {
		c.Worker.Concurrency = DefaultWorkerConcurrency
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
