package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration (file + env overrides)
type Config struct {
	Server struct {
		Addr                  string `mapstructure:"addr"`
		LogLevel              string `mapstructure:"log_level"`
		LogFormat             string `mapstructure:"log_format"`
		ImageRoute            string `mapstructure:"image_route"`
		RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
	} `mapstructure:"server"`

	Geo struct {
		Enabled        bool   `mapstructure:"enabled"`
		Provider       string `mapstructure:"provider"`
		Token          string `mapstructure:"token"`
		Endpoint       string `mapstructure:"endpoint"`
		DBPath         string `mapstructure:"db_path"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"geo"`

	Rules struct {
		Source string `mapstructure:"source"`
		Path   string `mapstructure:"path"`
	} `mapstructure:"rules"`

	Postgres struct {
		Host         string `mapstructure:"host"`
		Port         int    `mapstructure:"port"`
		User         string `mapstructure:"user"`
		Password     string `mapstructure:"password"`
		DBName       string `mapstructure:"db_name"`
		SSLMode      string `mapstructure:"ssl_mode"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
		Table        string `mapstructure:"table"`
	} `mapstructure:"postgres"`
}

// Load reads configs/application.yaml (optional) and APP_* environment
// variables, e.g. APP_GEO_TOKEN for geo.token.
func Load() Config {
	return LoadFrom("configs")
}

func LoadFrom(dir string) Config {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)
	_ = v.ReadInConfig() // optional; env can fully configure

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Errorf("unable to decode config: %w", err))
	}
	validate(&cfg)
	return cfg
}

// Every key needs a default so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "console")
	v.SetDefault("server.image_route", "/img")
	v.SetDefault("server.request_timeout_seconds", 30)

	v.SetDefault("geo.enabled", false)
	v.SetDefault("geo.provider", "ipinfo")
	v.SetDefault("geo.token", "")
	v.SetDefault("geo.endpoint", "https://ipinfo.io")
	v.SetDefault("geo.db_path", "")
	v.SetDefault("geo.timeout_seconds", 5)

	v.SetDefault("rules.source", "file")
	v.SetDefault("rules.path", "configs/rules.yaml")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", "")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 10)
	v.SetDefault("postgres.table", "traffic_rules")
}

func validate(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ImageRoute == "" {
		c.Server.ImageRoute = "/img"
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = 30
	}
	if c.Geo.Provider == "" {
		c.Geo.Provider = "ipinfo"
	}
	if c.Geo.Endpoint == "" {
		c.Geo.Endpoint = "https://ipinfo.io"
	}
	if c.Geo.TimeoutSeconds <= 0 {
		c.Geo.TimeoutSeconds = 5
	}
	if c.Rules.Source == "" {
		c.Rules.Source = "file"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.MaxOpenConns == 0 {
		c.Postgres.MaxOpenConns = 10
	}
	if c.Postgres.MaxIdleConns == 0 {
		c.Postgres.MaxIdleConns = 10
	}
	if c.Postgres.Table == "" {
		c.Postgres.Table = "traffic_rules"
	}
	c.Geo.Provider = strings.ToLower(c.Geo.Provider)
	c.Rules.Source = strings.ToLower(c.Rules.Source)
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.DBName,
		c.Postgres.SSLMode,
	)
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

func (c Config) GeoTimeout() time.Duration {
	return time.Duration(c.Geo.TimeoutSeconds) * time.Second
}
