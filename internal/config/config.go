package config

import (
	"time"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Broker        BrokerConfig
	Logging       LoggingConfig
	Collaborators CollaboratorsConfig
	Operator      OperatorConfig
	Tracing       TracingConfig
}

type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	ReadTimeoutSeconds  time.Duration `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds time.Duration `mapstructure:"write_timeout_seconds"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig
	Redis         RedisConfig
	RunMigrations bool `mapstructure:"run_migrations"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type BrokerConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type RabbitMQConfig struct {
	URL                string        `mapstructure:"url"`
	PrimaryExchange    string        `mapstructure:"primary_exchange"`
	PrimaryQueue       string        `mapstructure:"primary_queue"`
	HoldingExchange    string        `mapstructure:"holding_exchange"`
	HoldingQueue       string        `mapstructure:"holding_queue"`
	DeadLetterExchange string        `mapstructure:"dead_letter_exchange"`
	DeadLetterQueue    string        `mapstructure:"dead_letter_queue"`
	ReconnectDelay     time.Duration `mapstructure:"reconnect_delay"`
	DrainGrace         time.Duration `mapstructure:"drain_grace"`
	PublishTimeout     time.Duration `mapstructure:"publish_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CollaboratorsConfig struct {
	OrganizationResolver ResolverConfig   `mapstructure:"organization_resolver"`
	RuleSource           RuleSourceConfig `mapstructure:"rule_source"`
}

type ResolverConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	CacheTTLSeconds int           `mapstructure:"cache_ttl_seconds"`
}

type RuleSourceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OperatorConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
