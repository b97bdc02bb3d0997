package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	Version        string        `envconfig:"VERSION" default:"dev"`
	MigrateOnStart bool          `envconfig:"MIGRATE_ON_START" default:"false"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	MaxUploadBytes int64         `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer   string `envconfig:"JWT_ISSUER" default:""`
	JWTAudience string `envconfig:"JWT_AUDIENCE" default:"authenticated"`
	CronSecret  string `envconfig:"CRON_SECRET" default:""`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"10"`

	StorageBackend   string `envconfig:"STORAGE_BACKEND" default:"fs"`
	StorageDir       string `envconfig:"STORAGE_DIR" default:"./data/storage"`
	StoragePublicURL string `envconfig:"STORAGE_PUBLIC_URL" default:"http://localhost:8080/storage"`
	S3Endpoint       string `envconfig:"S3_ENDPOINT" default:""`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY" default:""`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY" default:""`
	S3UseSSL         bool   `envconfig:"S3_USE_SSL" default:"true"`

	PurgeSchedule  string        `envconfig:"PURGE_SCHEDULE" default:""`
	PurgeRetention time.Duration `envconfig:"PURGE_RETENTION" default:"336h"`
	RedisURL       string        `envconfig:"REDIS_URL" default:""`

	RateLimitRPS       float64  `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst     int      `envconfig:"RATE_LIMIT_BURST" default:"20"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
