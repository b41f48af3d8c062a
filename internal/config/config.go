package config

import (
	"github.com/clinlix/service-booking/pkg/config"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	DBConfig     config.DatabaseConfig
	JWTConfig    config.JWTConfig
	KafkaConfig  config.KafkaConfig
	RedisConfig  config.RedisConfig
	StripeConfig config.StripeConfig
	SMTPConfig   config.SMTPConfig
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{
		Port:         config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:       config.GetAppEnv(v),
		DBConfig:     config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:    config.LoadJWTConfig(v),
		KafkaConfig:  config.LoadKafkaConfig(v),
		RedisConfig:  config.LoadRedisConfig(v),
		StripeConfig: config.LoadStripeConfig(v),
		SMTPConfig:   config.LoadSMTPConfig(v),
	}, nil
}
