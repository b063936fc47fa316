package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// per-request deadline propagated to storage and object store calls
	RequestTimeoutSec int
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Embedded starts an in-process miniredis when Addr is empty.
	Embedded  bool   `mapstructure:"embedded"`
	KeyPrefix string `mapstructure:"keyprefix"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Storage struct {
	Driver        string // "s3" | "memory"
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
	TimeoutSec    int
}

type NATS struct {
	URL           string
	SubjectPrefix string
	// Embedded runs an in-process nats-server when URL is empty.
	Embedded bool
}

type RateLimit struct {
	RPS         float64
	Burst       int
	PerIPRPS    float64
	PerIPBurst  int
	MaxInFlight int64
}

type Upload struct {
	MaxBytes int64
}

type Authz struct {
	// "resource:action" -> strategy, e.g. "room:update": "owner"
	Overrides map[string]string
}

type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

type Config struct {
	App        App
	Log        Log
	JWT        JWT
	DB         DB
	Redis      Redis `mapstructure:"redis"`
	Storage    Storage
	NATS       NATS
	RateLimit  RateLimit
	Upload     Upload
	Authz      Authz
	Pagination Pagination
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "hotel-backoffice")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 30)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 15)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.enable", false)
	v.SetDefault("log.rotate.filename", "logs/app.log")
	v.SetDefault("log.rotate.maxsizemb", 100)
	v.SetDefault("log.rotate.maxbackups", 7)
	v.SetDefault("log.rotate.maxagedays", 30)
	v.SetDefault("log.rotate.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "hotel-backoffice")
	v.SetDefault("jwt.accesstokenttlmin", 60)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:hotels.db")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.embedded", false)
	v.SetDefault("redis.keyprefix", "hotel")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "hotel-images")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.usessl", true)
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("storage.timeoutsec", 20)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subjectprefix", "hotel")
	v.SetDefault("nats.embedded", false)

	v.SetDefault("ratelimit.rps", 200)
	v.SetDefault("ratelimit.burst", 400)
	v.SetDefault("ratelimit.periprps", 20)
	v.SetDefault("ratelimit.peripburst", 40)
	v.SetDefault("ratelimit.maxinflight", 300)

	v.SetDefault("upload.maxbytes", 10<<20)

	v.SetDefault("authz.overrides", map[string]string{})

	v.SetDefault("pagination.defaultlimit", 10)
	v.SetDefault("pagination.maxlimit", 100)
}

// Load reads path (or CONFIG_PATH, or ./configs/config.local.yaml). A missing file is
// tolerated so that a container can be configured from APP_* variables alone.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 16 {
		return errors.New("jwt.secret must be at least 16 bytes (APP_JWT_SECRET)")
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		return errors.New("jwt.accesstokenttlmin must be positive")
	}
	switch c.Storage.Driver {
	case "memory":
	case "s3":
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return errors.New("storage.endpoint and storage.bucket are required for s3")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return errors.New("pagination limits are inconsistent")
	}
	return nil
}
