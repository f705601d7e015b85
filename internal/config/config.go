package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	DB         DatabaseConfig
	Dispatch   DispatchConfig
	Channels   ChannelsConfig
	Escalation EscalationConfig
	API        APIConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Path string
}

type DispatchConfig struct {
	MaxWorkers  int
	SendTimeout time.Duration
}

// ChannelsConfig points each outbound channel at its gateway. An empty URL
// leaves that channel in log-only stub mode.
type ChannelsConfig struct {
	SMSGatewayURL   string
	PagerGatewayURL string
	EmailGatewayURL string
}

// EscalationConfig names the deployment's designated primary recipients.
type EscalationConfig struct {
	PrimaryNurse     string
	PrimaryPhysician string
}

type APIConfig struct {
	RateLimitRPS   int
	RateLimitBurst int
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/patient-alerts.db"),
		},
		Dispatch: DispatchConfig{
			MaxWorkers:  getEnvInt("DISPATCH_MAX_WORKERS", 4),
			SendTimeout: getEnvDuration("CHANNEL_SEND_TIMEOUT", 10*time.Second),
		},
		Channels: ChannelsConfig{
			SMSGatewayURL:   getEnv("SMS_GATEWAY_URL", ""),
			PagerGatewayURL: getEnv("PAGER_GATEWAY_URL", ""),
			EmailGatewayURL: getEnv("EMAIL_GATEWAY_URL", ""),
		},
		Escalation: EscalationConfig{
			PrimaryNurse:     getEnv("PRIMARY_NURSE_ID", "nurse_david"),
			PrimaryPhysician: getEnv("PRIMARY_PHYSICIAN_ID", "dr_smith"),
		},
		API: APIConfig{
			RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Dispatch.MaxWorkers < 1 {
		return fmt.Errorf("dispatch worker count must be at least 1")
	}
	if c.Dispatch.SendTimeout < time.Second {
		return fmt.Errorf("channel send timeout must be at least 1 second")
	}
	if c.Escalation.PrimaryNurse == "" {
		return fmt.Errorf("primary nurse id is required")
	}
	if c.API.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 rps")
	}
	if c.API.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
