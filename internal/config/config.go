// Package config loads service settings from config.yaml, .env and the
// environment (PAWPAIR_ prefix, "." replaced by "_").
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PAWPAIR"

type Config struct {
	Server       Server       `mapstructure:"server"`
	Database     Database     `mapstructure:"database"`
	Redis        Redis        `mapstructure:"redis"`
	JWT          JWT          `mapstructure:"jwt"`
	Chat         Chat         `mapstructure:"chat"`
	Telegram     Telegram     `mapstructure:"telegram"`
	Localization Localization `mapstructure:"localization"`
	Log          Log          `mapstructure:"log"`
}

type Server struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type Database struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type Redis struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWT struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type Chat struct {
	MaxMessageLength int     `mapstructure:"max_message_length"`
	SendBuffer       int     `mapstructure:"send_buffer"`
	BrokerQueue      int     `mapstructure:"broker_queue"`
	RateLimit        float64 `mapstructure:"rate_limit"`
	RateBurst        int     `mapstructure:"rate_burst"`
}

type Telegram struct {
	// Token enables match notifications when set.
	Token string `mapstructure:"token"`
}

type Localization struct {
	Path        string `mapstructure:"path"`
	DefaultLang string `mapstructure:"default_lang"`
}

type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 20)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 72*time.Hour)

	v.SetDefault("chat.max_message_length", 1000)
	v.SetDefault("chat.send_buffer", 256)
	v.SetDefault("chat.broker_queue", 1024)
	v.SetDefault("chat.rate_limit", 5.0)
	v.SetDefault("chat.rate_burst", 10)

	v.SetDefault("telegram.token", "")

	v.SetDefault("localization.path", "locales")
	v.SetDefault("localization.default_lang", "en")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads configuration. file may name a config file explicitly;
// otherwise config.yaml is looked up in ./configs and the working
// directory, and a missing file is not an error.
func Load(file string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	switch {
	case c.Database.DSN == "":
		return errors.New("config: database.dsn is required")
	case c.Chat.MaxMessageLength <= 0:
		return errors.New("config: chat.max_message_length must be positive")
	}
	return nil
}

// ValidateServer adds the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	return nil
}
