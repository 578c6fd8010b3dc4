// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environement variables.
type Config struct {
	DBDriver           string `mapstructure:"DB_DRIVER"`
	DBSource           string `mapstructure:"DB_SOURCE"`
	ServerAddress      string `mapstructure:"SERVER_ADDRESS"`
	WorkerPoolCapacity int    `mapstructure:"WORKER_POOL_CAPACITY"`
	AuditLogPath       string `mapstructure:"AUDIT_LOG_PATH"`
	RedisAddress       string `mapstructure:"REDIS_ADDRESS"`
	RedisAuditStream   string `mapstructure:"REDIS_AUDIT_STREAM"`
	Environement       string `mapstructure:"GO_ENV"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("WORKER_POOL_CAPACITY", 10)

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
