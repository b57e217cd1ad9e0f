package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                 string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes      int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=10080"`
	ResetTokenLifetimeMinutes int    `mapstructure:"reset_token_lifetime_minutes" validate:"required,gt=0,lte=1440"`
	BCryptCost                int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`

	// AllowAdminSignup lets anonymous registrations request the Admin role.
	AllowAdminSignup bool `mapstructure:"allow_admin_signup"`

	// ExposeResetToken returns password reset tokens in the HTTP response.
	// Only meant for development setups without a mail relay.
	ExposeResetToken bool `mapstructure:"expose_reset_token"`

	// LoginRatePerMinute throttles /api/auth requests per client IP.
	LoginRatePerMinute int `mapstructure:"login_rate_per_minute" validate:"gte=1"`
}

// RedisConfig configures the store for single-use password reset tokens.
// An empty Addr selects an in-process store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// StorageConfig selects where uploaded cover images and profile pictures go.
type StorageConfig struct {
	Backend       string      `mapstructure:"backend" validate:"required,oneof=local minio"`
	LocalDir      string      `mapstructure:"local_dir" validate:"required_if=Backend local"`
	PublicBaseURL string      `mapstructure:"public_base_url"`
	MinIO         MinIOConfig `mapstructure:"minio"`
}

// MinIOConfig holds S3-compatible object storage settings.
type MinIOConfig struct {
	Endpoint             string `mapstructure:"endpoint"`
	AccessKey            string `mapstructure:"access_key"`
	SecretKey            string `mapstructure:"secret_key"`
	Bucket               string `mapstructure:"bucket"`
	Region               string `mapstructure:"region"`
	UseSSL               bool   `mapstructure:"use_ssl"`
	PresignExpiryMinutes int    `mapstructure:"presign_expiry_minutes" validate:"gte=0"`
}
