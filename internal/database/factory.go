package database

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Rana718/schemaseed/internal/config"
	"github.com/Rana718/schemaseed/internal/database/dataapi"
	"github.com/Rana718/schemaseed/internal/database/mysql"
	"github.com/Rana718/schemaseed/internal/database/postgres"
	"github.com/Rana718/schemaseed/internal/database/sqlite"
)

// NewAdapter returns the adapter for provider. "dataapi" selects the RDS Data
// API gateway; everything else is a direct connection.
func NewAdapter(provider string, cfg *config.Config, log *zap.Logger) (Adapter, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch provider {
	case config.ProviderDataAPI:
		return dataapi.New(dataapi.Options{
			ResourceARN:     cfg.DataAPI.ResourceARN,
			SecretARN:       cfg.DataAPI.SecretARN,
			Region:          cfg.DataAPI.Region,
			Engine:          cfg.DataAPI.Engine,
			Endpoint:        cfg.DataAPI.Endpoint,
			Profile:         cfg.DataAPI.Profile,
			AccessKeyID:     cfg.DataAPI.AccessKeyID,
			SecretAccessKey: cfg.DataAPI.SecretAccessKey,
			Logger:          log,
		}), nil
	case "mysql":
		return mysql.New(log), nil
	case "postgresql", "postgres":
		return postgres.New(log), nil
	case "sqlite", "sqlite3":
		return sqlite.New(log), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", provider)
	}
}
