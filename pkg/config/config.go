package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Fulfillment  FulfillmentConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"WAREBOUND_APP_ENV" required:"true"`
	Port         string `envconfig:"WAREBOUND_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WAREBOUND_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WAREBOUND_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WAREBOUND_DB_DSN"`
	Driver string `envconfig:"WAREBOUND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WAREBOUND_DB_HOST"`
	LegacyPort     int    `envconfig:"WAREBOUND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WAREBOUND_DB_USER"`
	LegacyPassword string `envconfig:"WAREBOUND_DB_PASSWORD"`
	LegacyName     string `envconfig:"WAREBOUND_DB_NAME"`
	LegacySSLMode  string `envconfig:"WAREBOUND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WAREBOUND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAREBOUND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAREBOUND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAREBOUND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WAREBOUND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WAREBOUND_REDIS_ADDR"`
	Password     string        `envconfig:"WAREBOUND_REDIS_PASSWORD"`
	DB           int           `envconfig:"WAREBOUND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WAREBOUND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAREBOUND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAREBOUND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAREBOUND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAREBOUND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WAREBOUND_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"WAREBOUND_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WAREBOUND_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	FulfillmentTopic        string `envconfig:"WAREBOUND_PUBSUB_FULFILLMENT_TOPIC" default:"wb-fulfillment-events"`
	NotificationsTopic      string `envconfig:"WAREBOUND_PUBSUB_NOTIFICATIONS_TOPIC"`
	FulfillmentSubscription string `envconfig:"WAREBOUND_PUBSUB_FULFILLMENT_SUBSCRIPTION"`
}

// FulfillmentConfig carries warehouse workflow knobs.
type FulfillmentConfig struct {
	PackNumberPrefix     string        `envconfig:"WAREBOUND_PACK_NUMBER_PREFIX" default:"PK"`
	PackSequenceTTL      time.Duration `envconfig:"WAREBOUND_PACK_SEQUENCE_TTL" default:"48h"`
	DefaultDeliveryDays  int           `envconfig:"WAREBOUND_DEFAULT_DELIVERY_DAYS" default:"3"`
	PackNumberMaxRetries int           `envconfig:"WAREBOUND_PACK_NUMBER_MAX_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WAREBOUND_AUTO_MIGRATE" default:"false"`
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
