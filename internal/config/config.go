package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	ProviderDataAPI = "dataapi"

	DefaultResourceARN      = "arn:aws:rds:us-east-1:632930644527:cluster:mcpdemo"
	DefaultSecretARN        = "arn:aws:secretsmanager:us-east-1:632930644527:secret:aurora/mcpdemo-QOU5uE"
	DefaultRegion           = "us-east-1"
	DefaultFallbackDatabase = "mcpdemo_testdb"
	DefaultPasswordEnv      = "SCHEMASEED_DB_PASSWORD"

	FormatLines = "lines"
	FormatTable = "table"
)

// DefaultSystemDatabases are never picked as the seeding target.
var DefaultSystemDatabases = []string{"information_schema", "mysql", "performance_schema", "sys"}

// DefaultPostgresSystemDatabases replaces DefaultSystemDatabases when the
// Data API cluster runs the postgres engine.
var DefaultPostgresSystemDatabases = []string{"postgres", "rdsadmin", "template0", "template1"}

type Config struct {
	DataAPI DataAPI `json:"data_api" mapstructure:"data_api"`
	Direct  Direct  `json:"direct" mapstructure:"direct"`
	Seed    Seed    `json:"seed" mapstructure:"seed"`
}

type DataAPI struct {
	ResourceARN      string   `json:"resource_arn" mapstructure:"resource_arn"`
	SecretARN        string   `json:"secret_arn" mapstructure:"secret_arn"`
	Region           string   `json:"region" mapstructure:"region"`
	Engine           string   `json:"engine" mapstructure:"engine"` // mysql (default) or postgres
	Endpoint         string   `json:"endpoint,omitempty" mapstructure:"endpoint"`
	Profile          string   `json:"profile,omitempty" mapstructure:"profile"`
	AccessKeyID      string   `json:"access_key_id,omitempty" mapstructure:"access_key_id"`
	SecretAccessKey  string   `json:"secret_access_key,omitempty" mapstructure:"secret_access_key"`
	FallbackDatabase string   `json:"fallback_database" mapstructure:"fallback_database"`
	SystemDatabases  []string `json:"system_databases" mapstructure:"system_databases"`
}

type Direct struct {
	Provider    string `json:"provider" mapstructure:"provider"`
	Host        string `json:"host" mapstructure:"host"`
	Port        string `json:"port,omitempty" mapstructure:"port"`
	User        string `json:"user" mapstructure:"user"`
	Database    string `json:"database" mapstructure:"database"`
	Charset     string `json:"charset" mapstructure:"charset"`
	PasswordEnv string `json:"password_env" mapstructure:"password_env"`
}

type Seed struct {
	DataFile string `json:"data_file,omitempty" mapstructure:"data_file"`
	Format   string `json:"format" mapstructure:"format"`
	Force    bool   `json:"force" mapstructure:"force"`
}

// SetDefaults registers every key so AutomaticEnv can override nested values
// (SCHEMASEED_DIRECT_HOST, SCHEMASEED_DATA_API_REGION, ...).
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix("SCHEMASEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("data_api.resource_arn", DefaultResourceARN)
	v.SetDefault("data_api.secret_arn", DefaultSecretARN)
	v.SetDefault("data_api.region", DefaultRegion)
	v.SetDefault("data_api.engine", "mysql")
	v.SetDefault("data_api.endpoint", "")
	v.SetDefault("data_api.profile", "")
	v.SetDefault("data_api.access_key_id", "")
	v.SetDefault("data_api.secret_access_key", "")
	v.SetDefault("data_api.fallback_database", DefaultFallbackDatabase)
	v.SetDefault("data_api.system_databases", DefaultSystemDatabases)

	v.SetDefault("direct.provider", "mysql")
	v.SetDefault("direct.host", "")
	v.SetDefault("direct.port", "")
	v.SetDefault("direct.user", "")
	v.SetDefault("direct.database", "")
	v.SetDefault("direct.charset", "utf8mb4")
	v.SetDefault("direct.password_env", DefaultPasswordEnv)

	v.SetDefault("seed.data_file", "")
	v.SetDefault("seed.format", FormatLines)
	v.SetDefault("seed.force", false)
}

func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DataAPI.Region == "" {
		cfg.DataAPI.Region = DefaultRegion
	}
	if cfg.DataAPI.Engine == "" {
		cfg.DataAPI.Engine = "mysql"
	}
	if cfg.DataAPI.FallbackDatabase == "" {
		cfg.DataAPI.FallbackDatabase = DefaultFallbackDatabase
	}
	if len(cfg.DataAPI.SystemDatabases) == 0 {
		cfg.DataAPI.SystemDatabases = DefaultSystemDatabases
	}
	if cfg.Direct.Provider == "" {
		cfg.Direct.Provider = "mysql"
	}
	if cfg.Direct.Charset == "" {
		cfg.Direct.Charset = "utf8mb4"
	}
	if cfg.Direct.PasswordEnv == "" {
		cfg.Direct.PasswordEnv = DefaultPasswordEnv
	}
	if cfg.Seed.Format == "" {
		cfg.Seed.Format = FormatLines
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	supportedProviders := []string{"mysql", "postgresql", "postgres", "sqlite", "sqlite3"}
	if !contains(supportedProviders, c.Direct.Provider) {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Direct.Provider, supportedProviders)
	}

	supportedEngines := []string{"mysql", "postgres"}
	if !contains(supportedEngines, c.DataAPI.Engine) {
		return fmt.Errorf("unsupported data api engine: %s. Supported engines: %v", c.DataAPI.Engine, supportedEngines)
	}

	if c.Seed.Format != FormatLines && c.Seed.Format != FormatTable {
		return fmt.Errorf("unsupported output format: %s", c.Seed.Format)
	}

	return nil
}

// ValidateDataAPI checks the settings the gateway transport cannot run without.
func (c *Config) ValidateDataAPI() error {
	if c.DataAPI.ResourceARN == "" {
		return fmt.Errorf("data_api.resource_arn cannot be empty")
	}
	if c.DataAPI.SecretARN == "" {
		return fmt.Errorf("data_api.secret_arn cannot be empty")
	}
	return nil
}

// GetPassword reads the direct-connection password from the environment
// variable named by PasswordEnv. Empty means the operator must be prompted.
func (c *Config) GetPassword() string {
	return os.Getenv(c.Direct.PasswordEnv)
}

// SystemDatabases returns the names the gateway resolver skips for the
// configured engine.
func (c *Config) SystemDatabases() []string {
	if c.DataAPI.Engine == "postgres" && sameNames(c.DataAPI.SystemDatabases, DefaultSystemDatabases) {
		return DefaultPostgresSystemDatabases
	}
	return c.DataAPI.SystemDatabases
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
