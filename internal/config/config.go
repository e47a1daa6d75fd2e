package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type AppConfig struct {
	API        *APIConfig        `mapstructure:"api"`
	Gin        *GinConfig        `mapstructure:"gin"`
	Postgres   *PostgresConfig   `mapstructure:"postgres"`
	Redis      *RedisConfig      `mapstructure:"redis"`
	Dispatcher *DispatcherConfig `mapstructure:"dispatcher"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	BaseURL            string   `mapstructure:"base_url"`
	Port               string   `mapstructure:"port"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	DB   int    `mapstructure:"db"`
}

type DispatcherConfig struct {
	Workers             int `mapstructure:"workers"`
	QueueSize           int `mapstructure:"queue_size"`
	ClaimTimeoutSeconds int `mapstructure:"claim_timeout_seconds"`
}

func Load(configPath string) (*AppConfig, error) {
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	// Platform-provided variables win over the file.
	if port := os.Getenv("PORT"); port != "" {
		conf.API.Port = port
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		conf.API.Environment = env
	}

	return conf, nil
}
