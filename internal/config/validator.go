package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateCollaborators(cfg.Collaborators); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	mq := cfg.RabbitMQ

	if mq.URL == "" {
		return &ValidationError{
			Field:   "broker.rabbitmq.url",
			Message: "broker URL is required",
		}
	}

	if !strings.HasPrefix(mq.URL, "amqp://") && !strings.HasPrefix(mq.URL, "amqps://") {
		return &ValidationError{
			Field:   "broker.rabbitmq.url",
			Message: fmt.Sprintf("broker URL must use amqp:// or amqps:// scheme, got %s", mq.URL),
		}
	}

	names := map[string]string{
		"broker.rabbitmq.primary_exchange":     mq.PrimaryExchange,
		"broker.rabbitmq.primary_queue":        mq.PrimaryQueue,
		"broker.rabbitmq.holding_exchange":     mq.HoldingExchange,
		"broker.rabbitmq.holding_queue":        mq.HoldingQueue,
		"broker.rabbitmq.dead_letter_exchange": mq.DeadLetterExchange,
		"broker.rabbitmq.dead_letter_queue":    mq.DeadLetterQueue,
	}
	for field, value := range names {
		if value == "" {
			return &ValidationError{
				Field:   field,
				Message: "name cannot be empty",
			}
		}
	}

	if mq.PrimaryQueue == mq.HoldingQueue || mq.PrimaryQueue == mq.DeadLetterQueue || mq.HoldingQueue == mq.DeadLetterQueue {
		return &ValidationError{
			Field:   "broker.rabbitmq",
			Message: "primary, holding and dead-letter queues must be distinct",
		}
	}

	if mq.ReconnectDelay < 0 {
		return &ValidationError{
			Field:   "broker.rabbitmq.reconnect_delay",
			Message: "reconnect delay must be non-negative",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "postgres host is required",
		}
	}

	if cfg.Postgres.Port < 1 || cfg.Postgres.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Postgres.Port),
		}
	}

	if cfg.Postgres.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "postgres database name is required",
		}
	}

	if cfg.Redis.Host != "" && (cfg.Redis.Port < 1 || cfg.Redis.Port > 65535) {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Redis.Port),
		}
	}

	return nil
}

func validateCollaborators(cfg CollaboratorsConfig) error {
	if cfg.OrganizationResolver.BaseURL == "" {
		return &ValidationError{
			Field:   "collaborators.organization_resolver.base_url",
			Message: "organization resolver base URL is required",
		}
	}

	if cfg.RuleSource.BaseURL == "" {
		return &ValidationError{
			Field:   "collaborators.rule_source.base_url",
			Message: "rule source base URL is required",
		}
	}

	return nil
}
