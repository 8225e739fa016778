package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/portfoliobuilder/intake/internal/logger"
	"github.com/portfoliobuilder/intake/internal/validator"
)

type PostgresConfig struct {
	User               string        `validate:"required"`
	Password           string        `validate:"required"`
	Host               string        `validate:"required"`
	Database           string        `validate:"required"`
	MaxIdleConnections int           `validate:"required" mapstructure:"max_idle_connections"`
	MaxOpenConnections int           `validate:"required" mapstructure:"max_open_connections"`
	ConnectionTTL      time.Duration `validate:"required" mapstructure:"connection_ttl"`
	Port               int16         `validate:"required"`
}

type SlogConfig struct {
	Level int `mapstructure:"level"`
}

type GormLogConfig struct {
	Level        int  `mapstructure:"level"`
	TraceQueries bool `mapstructure:"trace_queries"`
}

type LoggingConfig struct {
	Gorm    GormLogConfig `mapstructure:"gorm"`
	App     SlogConfig    `mapstructure:"app"`
	UseOTLP bool          `mapstructure:"use_otlp"`
}

type SessionConfig struct {
	Name         string        `mapstructure:"name"          validate:"required"`
	Secret       string        `mapstructure:"secret"        validate:"required,min=16"`
	MaxAge       time.Duration `mapstructure:"max_age"       validate:"required"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

type VerificationConfig struct {
	// Notification failure aborts the submission when true. When false the
	// code is shown to the submitter and the flow continues.
	StrictNotification *bool         `mapstructure:"strict_notification" validate:"required"`
	CodeTTL            time.Duration `mapstructure:"code_ttl"`
	PublicIDAttempts   int           `mapstructure:"public_id_attempts"  validate:"required,min=1"`
}

type DraftsConfig struct {
	Backend string        `mapstructure:"backend" validate:"required,oneof=redis memory"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"     validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MailConfig struct {
	Host     string        `mapstructure:"host"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Port     int           `mapstructure:"port"     validate:"required"`
	Timeout  time.Duration `mapstructure:"timeout"`
	UseTLS   bool          `mapstructure:"use_tls"`
	UseSSL   bool          `mapstructure:"use_ssl"`
}

// Sender falls back to the SMTP username like most hosted relays expect.
func (m *MailConfig) Sender() string {
	if m.From != "" {
		return m.From
	}
	return m.Username
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"          validate:"required"`
	AccessKeyID     string `mapstructure:"access_key_id"     validate:"required"`
	SecretAccessKey string `mapstructure:"secret_access_key" validate:"required"`
	BucketName      string `mapstructure:"bucket_name"       validate:"required"`
	SSLEnabled      bool   `mapstructure:"ssl_enabled"`
	CreateBucket    bool   `mapstructure:"create_bucket"`
}

type AzureConfig struct {
	AccountName string `mapstructure:"account_name" validate:"required"`
	AccountKey  string `mapstructure:"account_key"  validate:"required"`
	ServiceURL  string `mapstructure:"service_url"  validate:"required"`
	Container   string `mapstructure:"container"    validate:"required"`
	// create the container on startup, for local azurite
	Dev bool `mapstructure:"dev"`
}

type StorageConfig struct {
	S3             *S3Config     `mapstructure:"s3"`
	Azure          *AzureConfig  `mapstructure:"azure"`
	Backend        string        `mapstructure:"backend"          validate:"required,oneof=minio azure"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" validate:"required"`
	PresignTTL     time.Duration `mapstructure:"presign_ttl"      validate:"required"`
}

type AdminConfig struct {
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

type RateLimitConfig struct {
	SubmitPerMinute int64 `mapstructure:"submit_per_minute"`
	VerifyPerMinute int64 `mapstructure:"verify_per_minute"`
	FailOpen        bool  `mapstructure:"fail_open"`
}

// See intake.example.yaml for an example config
type Config struct {
	Postgres             *PostgresConfig     `mapstructure:"postgres"               validate:"required"`
	Logging              *LoggingConfig      `mapstructure:"logging"                validate:"required"`
	Session              *SessionConfig      `mapstructure:"session"                validate:"required"`
	Verification         *VerificationConfig `mapstructure:"verification"           validate:"required"`
	Drafts               *DraftsConfig       `mapstructure:"drafts"                 validate:"required"`
	Redis                *RedisConfig        `mapstructure:"redis"                  validate:"required"`
	Mail                 *MailConfig         `mapstructure:"mail"                   validate:"required"`
	Storage              *StorageConfig      `mapstructure:"storage"                validate:"required"`
	Admin                *AdminConfig        `mapstructure:"admin"                  validate:"required"`
	RateLimit            *RateLimitConfig    `mapstructure:"ratelimit"`
	ListenAddress        string              `mapstructure:"listen_address"         validate:"required"`
	BaseURL              string              `mapstructure:"base_url"`
	GracefulShutdownSecs int64               `mapstructure:"graceful_shutdown_secs"`
}

const (
	AdminPassword              string = "admin.password"
	AdminUsername              string = "admin.username"
	AppLogLevel                string = "logging.app.level"
	DraftsBackend              string = "drafts.backend"
	DraftsTTL                  string = "drafts.ttl"
	EnvPrefix                  string = "intake"
	GormLogLevel               string = "logging.gorm.level"
	GormTraceQueries           string = "logging.gorm.trace_queries"
	GracefulShutdownSecs       string = "graceful_shutdown_secs"
	ListenAddress              string = "listen_address"
	MailFrom                   string = "mail.from"
	MailHost                   string = "mail.host"
	MailPassword               string = "mail.password"
	MailPort                   string = "mail.port"
	MailTimeout                string = "mail.timeout"
	MailUseSSL                 string = "mail.use_ssl"
	MailUseTLS                 string = "mail.use_tls"
	MailUsername               string = "mail.username"
	PostgresConnectonTTL       string = "postgres.connection_ttl"
	PostgresDatabase           string = "postgres.database"
	PostgresHost               string = "postgres.host"
	PostgresMaxIdleConnections string = "postgres.max_idle_connections"
	PostgresMaxOpenConnections string = "postgres.max_open_connections"
	PostgresPassword           string = "postgres.password"
	PostgresPort               string = "postgres.port"
	PostgresUser               string = "postgres.user"
	RateLimitFailOpen          string = "ratelimit.fail_open"
	RateLimitSubmitPerMinute   string = "ratelimit.submit_per_minute"
	RateLimitVerifyPerMinute   string = "ratelimit.verify_per_minute"
	RedisAddr                  string = "redis.addr"
	RedisPassword              string = "redis.password"
	SessionMaxAge              string = "session.max_age"
	SessionName                string = "session.name"
	SessionSecret              string = "session.secret" // #nosec
	SessionSecureCookie        string = "session.secure_cookie"
	StorageAzureAccountKey     string = "storage.azure.account_key"
	StorageBackend             string = "storage.backend"
	StorageMaxUploadBytes      string = "storage.max_upload_bytes"
	StoragePresignTTL          string = "storage.presign_ttl"
	StorageS3AccessKeyID       string = "storage.s3.access_key_id"
	StorageS3SecretAccessKey   string = "storage.s3.secret_access_key" // #nosec
	StorageS3SSLEnabled        string = "storage.s3.ssl_enabled"
	UseOTLP                    string = "logging.use_otlp"
	VerificationCodeTTL        string = "verification.code_ttl"
	VerificationIDAttempts     string = "verification.public_id_attempts"
	VerificationStrict         string = "verification.strict_notification"
)

// Secrets are bound explicitly so they can come from the environment alone.
// workaround for https://github.com/spf13/viper/issues/761
var envOnlyKeys = []string{
	AdminPassword,
	MailHost,
	MailPassword,
	MailUsername,
	PostgresPassword,
	RedisPassword,
	SessionSecret,
	StorageAzureAccountKey,
	StorageS3AccessKeyID,
	StorageS3SecretAccessKey,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ListenAddress, "[::]:5001")
	v.SetDefault(GracefulShutdownSecs, 30)

	v.SetDefault(PostgresHost, "localhost")
	v.SetDefault(PostgresPort, 5432)
	v.SetDefault(PostgresMaxIdleConnections, 2)
	v.SetDefault(PostgresMaxOpenConnections, 10)
	v.SetDefault(PostgresConnectonTTL, 10*time.Minute)

	v.SetDefault(GormLogLevel, int(slog.LevelWarn))
	v.SetDefault(GormTraceQueries, false)
	v.SetDefault(AppLogLevel, int(slog.LevelInfo))
	v.SetDefault(UseOTLP, false)

	v.SetDefault(SessionName, "intake_session")
	v.SetDefault(SessionMaxAge, 7*24*time.Hour)
	v.SetDefault(SessionSecureCookie, false)

	v.SetDefault(VerificationCodeTTL, 10*time.Minute)
	v.SetDefault(VerificationStrict, true)
	v.SetDefault(VerificationIDAttempts, 5)

	v.SetDefault(DraftsBackend, "redis")
	v.SetDefault(DraftsTTL, 24*time.Hour)
	v.SetDefault(RedisAddr, "localhost:6379")

	v.SetDefault(MailPort, 587)
	v.SetDefault(MailUseTLS, true)
	v.SetDefault(MailUseSSL, false)
	v.SetDefault(MailTimeout, 15*time.Second)
	v.SetDefault(MailFrom, "")

	v.SetDefault(StorageBackend, "minio")
	v.SetDefault(StorageMaxUploadBytes, 16*1024*1024)
	v.SetDefault(StoragePresignTTL, 15*time.Minute)
	v.SetDefault(StorageS3SSLEnabled, true)

	v.SetDefault(AdminUsername, "admin")

	v.SetDefault(RateLimitSubmitPerMinute, 0)
	v.SetDefault(RateLimitVerifyPerMinute, 0)
	v.SetDefault(RateLimitFailOpen, true)
}

// Load reads intake.yaml from /etc/intake/ or the working directory (or the
// explicit paths given) and overlays INTAKE_* environment variables.
func Load(paths ...string) (*Config, error) {
	logger.Logger.Info("loading config")

	v := viper.New()

	v.SetConfigName("intake")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"/etc/intake/", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// ignore config file not found to allow pure env config
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	valid := validator.Create()
	if err := valid.Validate(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "minio":
		if c.Storage.S3 == nil {
			return errors.New("storage.s3 is required when storage.backend is minio")
		}
	case "azure":
		if c.Storage.Azure == nil {
			return errors.New("storage.azure is required when storage.backend is azure")
		}
	}
	return nil
}

func (c *Config) StrictNotification() bool {
	return c.Verification.StrictNotification == nil || *c.Verification.StrictNotification
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s",
		url.QueryEscape(c.Postgres.User),
		url.QueryEscape(c.Postgres.Password),
		c.Postgres.Host, c.Postgres.Port,
		url.QueryEscape(c.Postgres.Database),
	)
}
