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
	Cart          CartConfig
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
	Env          string `envconfig:"ROTTAVA_APP_ENV" required:"true"`
	Port         string `envconfig:"ROTTAVA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ROTTAVA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ROTTAVA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"ROTTAVA_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the configured CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type DBConfig struct {
	DSN    string `envconfig:"ROTTAVA_DB_DSN"`
	Driver string `envconfig:"ROTTAVA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ROTTAVA_DB_HOST"`
	LegacyPort     int    `envconfig:"ROTTAVA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ROTTAVA_DB_USER"`
	LegacyPassword string `envconfig:"ROTTAVA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ROTTAVA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ROTTAVA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ROTTAVA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ROTTAVA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ROTTAVA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROTTAVA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ROTTAVA_REDIS_URL"`
	Address      string        `envconfig:"ROTTAVA_REDIS_ADDR"`
	Password     string        `envconfig:"ROTTAVA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROTTAVA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROTTAVA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ROTTAVA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ROTTAVA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROTTAVA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROTTAVA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ROTTAVA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ROTTAVA_JWT_ISSUER" default:"rottava-agro-pet"`
	ExpirationMinutes      int    `envconfig:"ROTTAVA_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"ROTTAVA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ROTTAVA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ROTTAVA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ROTTAVA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ROTTAVA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ROTTAVA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ROTTAVA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ROTTAVA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ROTTAVA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ROTTAVA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ROTTAVA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ROTTAVA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CartConfig struct {
	// SnapshotTTL bounds how long an abandoned cart snapshot survives in Redis.
	SnapshotTTL time.Duration `envconfig:"ROTTAVA_CART_SNAPSHOT_TTL" default:"720h"`
	MaxQuantity int           `envconfig:"ROTTAVA_CART_MAX_QUANTITY" default:"999"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ROTTAVA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ROTTAVA_AUTO_MIGRATE" default:"false"`
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
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
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
