package mssqlvec

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration for the vector store.
type Config struct {
	// Database contains configuration for the SQL Server connection.
	Database DatabaseConfig `yaml:"database" json:"database"`

	// DefaultSchema is the schema collections land in when their name does
	// not carry an explicit "schema." prefix. Defaults to "dbo".
	DefaultSchema string `yaml:"default_schema,omitempty" json:"default_schema,omitempty"`

	// ParameterBudget is the per-statement parameter budget used to chunk
	// batch operations. Must stay below the server's hard limit of 2100;
	// defaults to 2000.
	ParameterBudget int `yaml:"parameter_budget,omitempty" json:"parameter_budget,omitempty"`
}

// DatabaseConfig contains configuration for the SQL Server connection.
type DatabaseConfig struct {
	// DSN is a complete connection string. When set it takes precedence
	// over the individual connection fields below.
	DSN string `yaml:"dsn,omitempty" json:"dsn,omitempty"`

	// Host is the database host address.
	Host string `yaml:"host" json:"host"`

	// Port is the database port number.
	Port int `yaml:"port" json:"port"`

	// Database is the database name.
	Database string `yaml:"database" json:"database"`

	// Username is the database username.
	Username string `yaml:"username" json:"username"`

	// Password is the database password.
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// Encrypt controls transport encryption ("true", "false" or
	// "disable").
	Encrypt string `yaml:"encrypt,omitempty" json:"encrypt,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int `yaml:"max_open_conns,omitempty" json:"max_open_conns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int `yaml:"max_idle_conns,omitempty" json:"max_idle_conns,omitempty"`

	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty" json:"conn_max_lifetime,omitempty"`

	// ConnMaxIdleTime is the maximum amount of time a connection may be idle.
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time,omitempty" json:"conn_max_idle_time,omitempty"`

	// ConnectionTimeout is the timeout for establishing database connections.
	ConnectionTimeout time.Duration `yaml:"connection_timeout,omitempty" json:"connection_timeout,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:              "localhost",
			Port:              1433,
			MaxOpenConns:      25,
			MaxIdleConns:      5,
			ConnMaxLifetime:   5 * time.Minute,
			ConnMaxIdleTime:   10 * time.Minute,
			ConnectionTimeout: 10 * time.Second,
		},
		DefaultSchema:   "dbo",
		ParameterBudget: 2000,
	}
}

// LoadConfig reads a YAML configuration file, layered over the defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the configuration can produce a usable connection.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required when no DSN is set")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required when no DSN is set")
		}
	}
	if c.ParameterBudget < 0 {
		return fmt.Errorf("parameter budget must not be negative")
	}
	if c.ParameterBudget >= 2100 {
		return fmt.Errorf("parameter budget must stay below the server limit of 2100")
	}
	return nil
}

// DSN renders the connection string, preferring an explicitly configured
// one.
func (c *Config) DSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	query := url.Values{}
	query.Set("database", c.Database.Database)
	if c.Database.Encrypt != "" {
		query.Set("encrypt", c.Database.Encrypt)
	}
	if c.Database.ConnectionTimeout > 0 {
		query.Set("dial timeout", strconv.Itoa(int(c.Database.ConnectionTimeout.Seconds())))
	}
	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		RawQuery: query.Encode(),
	}
	if c.Database.Username != "" {
		u.User = url.UserPassword(c.Database.Username, c.Database.Password)
	}
	return u.String()
}

// Schema returns the configured default schema, falling back to "dbo".
func (c *Config) Schema() string {
	if c.DefaultSchema == "" {
		return "dbo"
	}
	return c.DefaultSchema
}
