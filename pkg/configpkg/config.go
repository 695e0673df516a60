// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	StoreDriver     string        `mapstructure:"STORE_DRIVER"`
	DBSource        string        `mapstructure:"DB_SOURCE"`
	ServerAddress   string        `mapstructure:"SERVER_ADDRESS"`
	Environement    string        `mapstructure:"GO_ENV"`
	RedisAddress    string        `mapstructure:"REDIS_ADDR"`
	EventsChannel   string        `mapstructure:"EVENTS_CHANNEL"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Default values used when neither the config file nor the environment sets them.
const (
	DefaultStoreDriver     = "memory"
	DefaultServerAddress   = "0.0.0.0:8080"
	DefaultEventsChannel   = "ledger_transactions"
	DefaultShutdownTimeout = 10 * time.Second
)

// Load read configuration from file or environment variables.
//
// A missing app.env is not an error: defaults and the environment still apply.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("STORE_DRIVER", DefaultStoreDriver)
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("SERVER_ADDRESS", DefaultServerAddress)
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("EVENTS_CHANNEL", DefaultEventsChannel)
	v.SetDefault("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout)

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
