package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rana718/schemaseed/internal/config"
	"github.com/Rana718/schemaseed/internal/database"
	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/prompt"
	"github.com/Rana718/schemaseed/internal/seeder"
)

var dataAPICmd = &cobra.Command{
	Use:   "dataapi",
	Short: "Seed an Aurora cluster through the RDS Data API",
	Long: `Seed an Aurora cluster through the RDS Data API.

Without --database the first non-system database on the cluster is used.
When the cluster has none, the fallback database (mcpdemo_testdb by default)
is created after confirmation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateDataAPI(); err != nil {
			return err
		}

		log := newLogger(cmd)
		defer log.Sync()

		adapter, err := database.NewAdapter(config.ProviderDataAPI, cfg, log)
		if err != nil {
			return err
		}

		var resolver seeder.Resolver = seeder.FirstAvailable{
			System:   cfg.SystemDatabases(),
			Fallback: cfg.DataAPI.FallbackDatabase,
			Logger:   log,
		}
		if name, _ := cmd.Flags().GetString("database"); name != "" {
			resolver = seeder.EnsureNamed{Name: name}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Script to insert test data into Aurora (%s) using Data API\n", cfg.DataAPI.Engine)
		color.New(color.FgCyan).Fprintf(out, "🎯 Target Aurora Cluster: %s\n", cfg.DataAPI.ResourceARN)

		return runSeed(cmd, seedRun{
			cfg:        cfg,
			adapter:    adapter,
			connection: common.ConnectionInfo{},
			resolver:   resolver,
			prompter:   prompt.New(cmd.InOrStdin(), out),
			log:        log,
			describe: func(w io.Writer, target seeder.Target) {
				fmt.Fprintln(w, "You are about to reset and insert test data into Aurora cluster:")
				fmt.Fprintf(w, "Resource ARN: %s\n", cfg.DataAPI.ResourceARN)
				fmt.Fprintf(w, "Database: %s\n", target.Name)
			},
			success: gatewaySuccess,
		})
	},
}

func init() {
	rootCmd.AddCommand(dataAPICmd)

	dataAPICmd.Flags().String("resource-arn", "", "Aurora cluster ARN")
	dataAPICmd.Flags().String("secret-arn", "", "Secrets Manager ARN holding the cluster credentials")
	dataAPICmd.Flags().String("region", "", "AWS region")
	dataAPICmd.Flags().String("engine", "", "cluster engine: mysql or postgres")
	dataAPICmd.Flags().String("database", "", "seed this database instead of discovering one")

	viper.BindPFlag("data_api.resource_arn", dataAPICmd.Flags().Lookup("resource-arn"))
	viper.BindPFlag("data_api.secret_arn", dataAPICmd.Flags().Lookup("secret-arn"))
	viper.BindPFlag("data_api.region", dataAPICmd.Flags().Lookup("region"))
	viper.BindPFlag("data_api.engine", dataAPICmd.Flags().Lookup("engine"))
}
