// Package config loads the server configuration from flags, environment
// variables, an optional .env file and an optional config file.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. MINITWITQL_AUTH_SECRET.
const EnvPrefix = "MINITWITQL"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// ServerConfig represents the HTTP listener settings.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Playground     bool          `mapstructure:"playground"`
}

// AuthConfig represents the token and login settings.
type AuthConfig struct {
	Secret     string        `mapstructure:"secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	LoginRPS   float64       `mapstructure:"login_rps"`
	LoginBurst int           `mapstructure:"login_burst"`
}

// StoreConfig represents the document store settings.
type StoreConfig struct {
	Driver             string `mapstructure:"driver"`
	SQLitePath         string `mapstructure:"sqlite_path"`
	MongoURI           string `mapstructure:"mongo_uri"`
	MongoDatabase      string `mapstructure:"mongo_database"`
	MessagesCollection string `mapstructure:"messages_collection"`
}

// LogConfig represents the logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config represents the configuration settings of the application.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

// SetDefaults registers every key with its default so that environment
// variables are picked up for all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":4000")
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.playground", true)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.login_rps", 5.0)
	v.SetDefault("auth.login_burst", 10)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.sqlite_path", "./minitwitql.db")
	v.SetDefault("store.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo_database", "minitwitql")
	v.SetDefault("store.messages_collection", "messages")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"addr":         "server.addr",
	"secret":       "auth.secret",
	"store":        "store.driver",
	"sqlite-path":  "store.sqlite_path",
	"mongo-uri":    "store.mongo_uri",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"config":       "config",
	"env-file":     "env_file",
	"playground":   "server.playground",
	"req-timeout":  "server.request_timeout",
	"token-ttl":    "auth.token_ttl",
	"mongo-db":     "store.mongo_database",
	"messages-col": "store.messages_collection",
}

// RegisterFlags defines the flags that override configuration keys.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("addr", ":4000", "Address the HTTP server listens on.")
	fs.String("secret", "", "Secret used to sign bearer tokens.")
	fs.String("store", DriverMemory, "Store driver: memory, sqlite or mongo.")
	fs.String("sqlite-path", "./minitwitql.db", "Path of the SQLite database.")
	fs.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI.")
	fs.String("mongo-db", "minitwitql", "MongoDB database name.")
	fs.String("messages-col", "messages", "Name of the messages collection (mongo).")
	fs.String("log-level", "info", "Log level: debug, info, warn or error.")
	fs.String("log-format", "json", "Log format: json or console.")
	fs.String("config", "", "Optional configuration file (yaml, json or toml).")
	fs.String("env-file", ".env", "Optional file of environment variables.")
	fs.Bool("playground", true, "Serve the GraphiQL page on /.")
	fs.Duration("req-timeout", 10*time.Second, "Deadline for each request.")
	fs.Duration("token-ttl", 24*time.Hour, "Lifetime of issued tokens.")
}

// BindFlags binds the flags defined by RegisterFlags to their keys. Flags
// missing from fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "binding flag %s", name)
		}
	}
	return nil
}

// Load reads and validates the configuration.
func Load(v *viper.Viper) (Config, error) {
	c, err := Read(v)
	if err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// Read reads the configuration without validating it. Values come, in
// decreasing priority, from flags that were set, environment variables
// (including those from the env file), the config file and the defaults.
func Read(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	if envFile := v.GetString("env_file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "loading %s", envFile)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config file %s", file)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "decoding configuration")
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required (set MINITWITQL_AUTH_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	return c.Store.Validate()
}

// Validate checks the settings of the selected driver.
func (c StoreConfig) Validate() error {
	switch c.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite driver")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("store.mongo_uri is required for the mongo driver")
		}
	default:
		return errors.Errorf("unknown store driver %q", c.Driver)
	}
	return nil
}
