// Package config defines the docrisk configuration model and its viper-based
// loader.  Configuration is read from a YAML file and overridden by
// environment variables with the DOCRISK_ prefix (nested keys joined by
// underscores, e.g. DOCRISK_DATABASE_HOST).
package config

import (
	"fmt"
	"time"

	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
)

// Config is the root configuration for all docrisk processes.  The apiserver
// and the scorer share this model; each reads only the sections it needs.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Log       logging.Config  `mapstructure:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig controls the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// DSN builds the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// RedisConfig controls the optional Redis connection used by the redis cache
// backend.  Ignored when Cache.Backend is "memory".
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
}

// CacheConfig controls the retrieval result cache.
type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	Backend string `mapstructure:"backend"`

	// TTL is how long a cached result page stays fresh.
	TTL time.Duration `mapstructure:"ttl"`
}

// KafkaConfig controls the scoring-run event stream.  When Brokers is empty
// event emission is disabled and the scorer runs standalone.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	ClientID     string        `mapstructure:"client_id"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Enabled reports whether event emission is configured.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// SnapshotConfig controls the degraded-mode snapshot source.
type SnapshotConfig struct {
	// Source selects where the snapshot is loaded from: "file", "s3", or
	// "" to disable snapshot fallback.
	Source string `mapstructure:"source"`

	// Path is the local file path when Source is "file".
	Path string `mapstructure:"path"`

	// S3 settings apply when Source is "s3".
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
	S3UseSSL    bool   `mapstructure:"s3_use_ssl"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Object    string `mapstructure:"s3_object"`

	// RefreshInterval reloads the snapshot periodically when > 0.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// Enabled reports whether a snapshot source is configured.
func (c SnapshotConfig) Enabled() bool { return c.Source != "" }

// RetrievalConfig controls the query-side behaviour of the apiserver.
type RetrievalConfig struct {
	// BackingURL points at a remote scoring API.  When empty the apiserver
	// reads the score store directly.
	BackingURL string `mapstructure:"backing_url"`

	// RequestTimeout bounds a single fetch against the backing source.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// MaxRetries is the number of additional attempts after the first
	// failed fetch.
	MaxRetries int `mapstructure:"max_retries"`

	// RetryBaseDelay is the first backoff interval; each retry doubles it.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`

	// PrefetchNextPage warms the cache with page N+1 after serving page N.
	PrefetchNextPage bool `mapstructure:"prefetch_next_page"`
}

// ScoringConfig controls the batch scoring engine.
type ScoringConfig struct {
	// DictionaryPath optionally overrides the built-in severity dictionary
	// with a YAML file.  Empty means use the built-in dictionary.
	DictionaryPath string `mapstructure:"dictionary_path"`
}

// WorkerConfig controls the scoring worker pool.
type WorkerConfig struct {
	// Concurrency is the number of parallel per-entity scoring workers.
	Concurrency int `mapstructure:"concurrency"`
}

// Validate checks cross-field constraints that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("config: database.name is required")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: cache.backend is redis but redis.addr is empty")
		}
	default:
		return fmt.Errorf("config: unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("config: cache.ttl must be positive")
	}
	switch c.Snapshot.Source {
	case "", "file", "s3":
	default:
		return fmt.Errorf("config: unknown snapshot.source %q", c.Snapshot.Source)
	}
	if c.Snapshot.Source == "file" && c.Snapshot.Path == "" {
		return fmt.Errorf("config: snapshot.source is file but snapshot.path is empty")
	}
	if c.Snapshot.Source == "s3" {
		if c.Snapshot.S3Endpoint == "" || c.Snapshot.S3Bucket == "" || c.Snapshot.S3Object == "" {
			return fmt.Errorf("config: snapshot.source is s3 but endpoint, bucket, or object is empty")
		}
	}
	if c.Retrieval.MaxRetries < 0 {
		return fmt.Errorf("config: retrieval.max_retries must not be negative")
	}
	if c.Retrieval.RetryBaseDelay <= 0 {
		return fmt.Errorf("config: retrieval.retry_base_delay must be positive")
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be at least 1")
	}
	return nil
}
