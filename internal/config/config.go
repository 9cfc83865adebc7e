package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Kubernetes KubernetesConfig
	Engine     EngineConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	Namespace      string
}

type EngineConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "provenance")
	v.SetDefault("DB_PASSWORD", "provenance")
	v.SetDefault("DB_NAME", "provenance")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("K8S_ENABLED", false)
	v.SetDefault("K8S_IN_CLUSTER", false)
	v.SetDefault("K8S_KUBECONFIG", "")
	v.SetDefault("K8S_NAMESPACE", "calc-jobs")
	v.SetDefault("ENGINE_POLL_INTERVAL", "10s")
	v.SetDefault("ENGINE_BATCH_SIZE", 50)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	connLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		connLifetime = 30 * time.Minute
	}
	pollInterval, err := time.ParseDuration(v.GetString("ENGINE_POLL_INTERVAL"))
	if err != nil {
		pollInterval = 10 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connLifetime,
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("K8S_ENABLED"),
			InCluster:      v.GetBool("K8S_IN_CLUSTER"),
			KubeConfigPath: v.GetString("K8S_KUBECONFIG"),
			Namespace:      v.GetString("K8S_NAMESPACE"),
		},
		Engine: EngineConfig{
			PollInterval: pollInterval,
			BatchSize:    v.GetInt("ENGINE_BATCH_SIZE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}
