package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"mdhub/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func bindEnvVariables() {
	viper.BindEnv("broker.rabbitmq.url", "BROKER_RABBITMQ_URL")
	viper.BindEnv("broker.rabbitmq.primary_exchange", "BROKER_RABBITMQ_PRIMARY_EXCHANGE")
	viper.BindEnv("broker.rabbitmq.primary_queue", "BROKER_RABBITMQ_PRIMARY_QUEUE")
	viper.BindEnv("broker.rabbitmq.holding_exchange", "BROKER_RABBITMQ_HOLDING_EXCHANGE")
	viper.BindEnv("broker.rabbitmq.holding_queue", "BROKER_RABBITMQ_HOLDING_QUEUE")
	viper.BindEnv("broker.rabbitmq.dead_letter_exchange", "BROKER_RABBITMQ_DEAD_LETTER_EXCHANGE")
	viper.BindEnv("broker.rabbitmq.dead_letter_queue", "BROKER_RABBITMQ_DEAD_LETTER_QUEUE")

	viper.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	viper.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	viper.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	viper.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	viper.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	viper.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("collaborators.organization_resolver.base_url", "COLLABORATORS_ORGANIZATION_RESOLVER_BASE_URL")
	viper.BindEnv("collaborators.rule_source.base_url", "COLLABORATORS_RULE_SOURCE_BASE_URL")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

func applyDefaults(cfg *Config) {
	mq := &cfg.Broker.RabbitMQ
	if mq.PrimaryExchange == "" {
		mq.PrimaryExchange = constants.DefaultPrimaryExchange
	}
	if mq.PrimaryQueue == "" {
		mq.PrimaryQueue = constants.DefaultPrimaryQueue
	}
	if mq.HoldingExchange == "" {
		mq.HoldingExchange = constants.DefaultHoldingExchange
	}
	if mq.HoldingQueue == "" {
		mq.HoldingQueue = constants.DefaultHoldingQueue
	}
	if mq.DeadLetterExchange == "" {
		mq.DeadLetterExchange = constants.DefaultDeadLetterExchange
	}
	if mq.DeadLetterQueue == "" {
		mq.DeadLetterQueue = constants.DefaultDeadLetterQueue
	}
	if mq.ReconnectDelay <= 0 {
		mq.ReconnectDelay = constants.DefaultReconnectDelay
	}
	if mq.DrainGrace <= 0 {
		mq.DrainGrace = constants.DefaultDrainGrace
	}
	if mq.PublishTimeout <= 0 {
		mq.PublishTimeout = constants.DefaultPublishTimeout
	}

	if cfg.Collaborators.OrganizationResolver.Timeout <= 0 {
		cfg.Collaborators.OrganizationResolver.Timeout = constants.DefaultHTTPTimeout
	}
	if cfg.Collaborators.RuleSource.Timeout <= 0 {
		cfg.Collaborators.RuleSource.Timeout = constants.DefaultHTTPTimeout
	}
}
