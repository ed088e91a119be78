package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Admin         AdminConfig
	Mailer        MailerConfig
	Media         MediaConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Name         string `envconfig:"KIDORA_APP_NAME" default:"Kidora"`
	Env          string `envconfig:"KIDORA_APP_ENV" required:"true"`
	Port         string `envconfig:"KIDORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KIDORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KIDORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KIDORA_DB_DSN"`
	Driver string `envconfig:"KIDORA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KIDORA_DB_HOST"`
	LegacyPort     int    `envconfig:"KIDORA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KIDORA_DB_USER"`
	LegacyPassword string `envconfig:"KIDORA_DB_PASSWORD"`
	LegacyName     string `envconfig:"KIDORA_DB_NAME"`
	LegacySSLMode  string `envconfig:"KIDORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KIDORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KIDORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KIDORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KIDORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KIDORA_REDIS_URL"`
	Address      string        `envconfig:"KIDORA_REDIS_ADDR"`
	Password     string        `envconfig:"KIDORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"KIDORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KIDORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KIDORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KIDORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KIDORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KIDORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"KIDORA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KIDORA_JWT_ISSUER" default:"kidora"`
	ExpirationMinutes int    `envconfig:"KIDORA_ACCESS_TOKEN_EXPIRE_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength        int `envconfig:"KIDORA_PASSWORD_MIN_LENGTH" default:"6"`
	ArgonMemoryKB    int `envconfig:"KIDORA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KIDORA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KIDORA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KIDORA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KIDORA_ARGON_KEY_LEN" default:"32"`

	ResetCodeTTL time.Duration `envconfig:"KIDORA_RESET_CODE_TTL" default:"10m"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"KIDORA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"KIDORA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"KIDORA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	ResetWindow     time.Duration `envconfig:"KIDORA_AUTH_RATE_LIMIT_RESET_WINDOW" default:"5m"`
	ResetEmailLimit int           `envconfig:"KIDORA_AUTH_RATE_LIMIT_RESET_EMAIL_LIMIT" default:"3"`
	ResetIPLimit    int           `envconfig:"KIDORA_AUTH_RATE_LIMIT_RESET_IP_LIMIT" default:"20"`
}

type AdminConfig struct {
	Email       string `envconfig:"KIDORA_ADMIN_EMAIL"`
	EmailSuffix string `envconfig:"KIDORA_ADMIN_EMAIL_SUFFIX" default:"@admin"`
	DevFallback string `envconfig:"KIDORA_ADMIN_DEV_FALLBACK" default:"admin@example.com"`
}

type MailerConfig struct {
	Mode     string `envconfig:"KIDORA_MAILER_MODE" default:"console"`
	From     string `envconfig:"KIDORA_MAILER_FROM" default:"no-reply@kidora.example"`
	SMTPHost string `envconfig:"KIDORA_SMTP_HOST"`
	SMTPPort int    `envconfig:"KIDORA_SMTP_PORT" default:"587"`
	SMTPUser string `envconfig:"KIDORA_SMTP_USER"`
	SMTPPass string `envconfig:"KIDORA_SMTP_PASS"`
}

type MediaConfig struct {
	RootDir     string `envconfig:"KIDORA_MEDIA_ROOT" default:"./uploads"`
	BaseURL     string `envconfig:"KIDORA_MEDIA_BASE_URL" default:"/uploads"`
	MaxUploadMB int    `envconfig:"KIDORA_MAX_UPLOAD_MB" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KIDORA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KIDORA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, key := range legacyDBEnvVars {
		if legacyValues[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
