package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := LoadFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, DefaultResourceARN, cfg.DataAPI.ResourceARN)
	assert.Equal(t, DefaultSecretARN, cfg.DataAPI.SecretARN)
	assert.Equal(t, "us-east-1", cfg.DataAPI.Region)
	assert.Equal(t, "mysql", cfg.DataAPI.Engine)
	assert.Equal(t, "mcpdemo_testdb", cfg.DataAPI.FallbackDatabase)
	assert.Equal(t, []string{"information_schema", "mysql", "performance_schema", "sys"}, cfg.DataAPI.SystemDatabases)

	assert.Equal(t, "mysql", cfg.Direct.Provider)
	assert.Equal(t, "utf8mb4", cfg.Direct.Charset)
	assert.Equal(t, DefaultPasswordEnv, cfg.Direct.PasswordEnv)
	assert.Empty(t, cfg.Direct.Host)

	assert.Equal(t, FormatLines, cfg.Seed.Format)
	assert.False(t, cfg.Seed.Force)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schemaseed.config.json")
	content := `{
  "direct": {"provider": "postgres", "host": "db.internal", "user": "admin", "database": "shop"},
  "seed": {"format": "table"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Direct.Provider)
	assert.Equal(t, "db.internal", cfg.Direct.Host)
	assert.Equal(t, "admin", cfg.Direct.User)
	assert.Equal(t, "shop", cfg.Direct.Database)
	assert.Equal(t, "utf8mb4", cfg.Direct.Charset)
	assert.Equal(t, FormatTable, cfg.Seed.Format)
	assert.Equal(t, DefaultResourceARN, cfg.DataAPI.ResourceARN)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SCHEMASEED_DIRECT_HOST", "env-host")
	t.Setenv("SCHEMASEED_DATA_API_REGION", "eu-west-1")

	cfg, err := LoadFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Direct.Host)
	assert.Equal(t, "eu-west-1", cfg.DataAPI.Region)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadFrom(newViper())
	require.NoError(t, err)

	cfg.Direct.Provider = "oracle"
	assert.ErrorContains(t, cfg.Validate(), "unsupported database provider")

	cfg.Direct.Provider = "sqlite"
	cfg.DataAPI.Engine = "mssql"
	assert.ErrorContains(t, cfg.Validate(), "unsupported data api engine")

	cfg.DataAPI.Engine = "postgres"
	cfg.Seed.Format = "csv"
	assert.ErrorContains(t, cfg.Validate(), "unsupported output format")
}

func TestValidateDataAPI(t *testing.T) {
	cfg, err := LoadFrom(newViper())
	require.NoError(t, err)
	assert.NoError(t, cfg.ValidateDataAPI())

	cfg.DataAPI.SecretARN = ""
	assert.ErrorContains(t, cfg.ValidateDataAPI(), "secret_arn")
}

func TestGetPassword(t *testing.T) {
	cfg, err := LoadFrom(newViper())
	require.NoError(t, err)

	t.Setenv(DefaultPasswordEnv, "s3cret")
	assert.Equal(t, "s3cret", cfg.GetPassword())

	cfg.Direct.PasswordEnv = "SCHEMASEED_TEST_UNSET_PASSWORD"
	assert.Empty(t, cfg.GetPassword())
}

func TestSystemDatabasesFollowEngine(t *testing.T) {
	cfg, err := LoadFrom(newViper())
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemDatabases, cfg.SystemDatabases())

	cfg.DataAPI.Engine = "postgres"
	assert.Equal(t, DefaultPostgresSystemDatabases, cfg.SystemDatabases())

	cfg.DataAPI.SystemDatabases = []string{"postgres"}
	assert.Equal(t, []string{"postgres"}, cfg.SystemDatabases())
}
