package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Ledger environments.
const (
	EnvironmentSandbox = "sandbox"
	EnvironmentDevnet  = "devnet"
	EnvironmentMainnet = "mainnet"
)

// Token bridge modes.
const (
	TokenBridgeModeMock = "mock"
	TokenBridgeModeLive = "live"
)

// Config represents the gateway configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Shutdown   ShutdownConfig   `mapstructure:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DatabaseConfig contains database connection settings for the transfer journal.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database" validate:"required_if=Enabled true"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// LedgerConfig is the immutable bridge configuration shared by the ledger
// client and every token bridge. It is built once at startup.
type LedgerConfig struct {
	Environment      string        `mapstructure:"environment" validate:"oneof=sandbox devnet mainnet"`
	JSONAPIURL       string        `mapstructure:"json_api_url" validate:"required_if=TokenBridgeMode live"`
	GRPCURL          string        `mapstructure:"grpc_url"`
	JWTToken         string        `mapstructure:"jwt_token"`
	Parties          PartiesConfig `mapstructure:"parties"`
	CommandTimeoutMs int           `mapstructure:"command_timeout_ms" validate:"min=1"`
	TokenBridgeMode  string        `mapstructure:"token_bridge_mode" validate:"oneof=mock live"`

	// TokenContractID is the operator-owned token contract that receives
	// MintTokens/BurnTokens exercises.
	TokenContractID string `mapstructure:"token_contract_id"`
	// PackageID prefixes the short template names used by the token bridges.
	PackageID string `mapstructure:"package_id"`
}

// PartiesConfig holds well-known party identifiers.
type PartiesConfig struct {
	Operator string `mapstructure:"operator" validate:"required"`
}

// CommandTimeout returns the per-command timeout as a duration.
func (c *LedgerConfig) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMs) * time.Millisecond
}

// IsMock reports whether the ledger client should synthesize responses.
func (c *LedgerConfig) IsMock() bool {
	return c.TokenBridgeMode == TokenBridgeModeMock
}

// RetryConfig contains the ledger client retry policy
type RetryConfig struct {
	// MaxRetries must be positive; the ledger client treats zero as its default.
	MaxRetries   int           `mapstructure:"max_retries" validate:"min=1"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	Factor       float64       `mapstructure:"factor" validate:"gte=1"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "60s")

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.database", "ledger_gateway")

	// Ledger defaults
	v.SetDefault("ledger.environment", EnvironmentSandbox)
	v.SetDefault("ledger.json_api_url", "http://localhost:7575")
	v.SetDefault("ledger.command_timeout_ms", 30000)
	v.SetDefault("ledger.token_bridge_mode", TokenBridgeModeMock)
	v.SetDefault("ledger.parties.operator", "Operator")
	v.SetDefault("ledger.grpc_url", "")
	v.SetDefault("ledger.jwt_token", "")
	v.SetDefault("ledger.token_contract_id", "")
	v.SetDefault("ledger.package_id", "")

	// Retry defaults
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.initial_delay", "500ms")
	v.SetDefault("retry.factor", 2.0)

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_port", 9090)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")

	// Shutdown defaults
	v.SetDefault("shutdown.timeout", "30s")
}

func validate(config *Config) error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(config)
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
