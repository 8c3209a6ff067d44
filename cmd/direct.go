package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rana718/schemaseed/internal/config"
	"github.com/Rana718/schemaseed/internal/database"
	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/prompt"
	"github.com/Rana718/schemaseed/internal/seeder"
)

var directCmd = &cobra.Command{
	Use:   "direct",
	Short: "Seed a database over a direct MySQL, PostgreSQL or SQLite connection",
	Long: `Seed a database over a direct connection.

Connection details missing from flags, environment and config file are
prompted for. The password is read from the variable named by
direct.password_env (SCHEMASEED_DB_PASSWORD by default) or typed without echo.
The database is created when it does not exist yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log := newLogger(cmd)
		defer log.Sync()

		out := cmd.OutOrStdout()
		p := prompt.New(cmd.InOrStdin(), out)

		fmt.Fprintf(out, "Script to insert test data into a %s database\n", cfg.Direct.Provider)

		info, err := connectionDetails(cfg, p)
		if err != nil {
			return err
		}

		adapter, err := database.NewAdapter(cfg.Direct.Provider, cfg, log)
		if err != nil {
			return err
		}

		// Server providers connect without a database first so a missing one
		// can be created; SQLite opens the file directly.
		connection := info
		if !isSQLite(cfg.Direct.Provider) {
			connection.Database = ""
		}

		return runSeed(cmd, seedRun{
			cfg:        cfg,
			adapter:    adapter,
			connection: connection,
			resolver:   seeder.EnsureNamed{Name: info.Database},
			prompter:   p,
			log:        log,
			describe: func(w io.Writer, target seeder.Target) {
				if isSQLite(cfg.Direct.Provider) {
					fmt.Fprintf(w, "You are about to reset and insert test data into database '%s'\n", target.Name)
					return
				}
				fmt.Fprintf(w, "You are about to reset and insert test data into database '%s' at '%s'\n", target.Name, info.Host)
			},
			success: directSuccess,
		})
	},
}

func isSQLite(provider string) bool {
	return provider == "sqlite" || provider == "sqlite3"
}

// connectionDetails fills the connection from config and prompts for the rest.
func connectionDetails(cfg *config.Config, p *prompt.Prompter) (common.ConnectionInfo, error) {
	info := common.ConnectionInfo{
		Host:     cfg.Direct.Host,
		Port:     cfg.Direct.Port,
		User:     cfg.Direct.User,
		Database: cfg.Direct.Database,
		Charset:  cfg.Direct.Charset,
	}

	ask := func(value *string, label, field string) error {
		if *value != "" {
			return nil
		}
		answer, err := p.Line(label)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if answer == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		*value = answer
		return nil
	}

	if isSQLite(cfg.Direct.Provider) {
		if err := ask(&info.Database, "Enter database file: ", "database file"); err != nil {
			return info, err
		}
		return info, nil
	}

	if err := ask(&info.Host, "Enter RDS endpoint: ", "host"); err != nil {
		return info, err
	}
	if err := ask(&info.Database, "Enter database name: ", "database name"); err != nil {
		return info, err
	}
	if err := ask(&info.User, "Enter username: ", "username"); err != nil {
		return info, err
	}

	info.Password = cfg.GetPassword()
	if info.Password == "" {
		password, err := p.Secret("Enter password: ")
		if err != nil {
			return info, fmt.Errorf("failed to read password: %w", err)
		}
		info.Password = password
	}

	return info, nil
}

func init() {
	rootCmd.AddCommand(directCmd)

	directCmd.Flags().String("provider", "", "database provider: mysql, postgres or sqlite")
	directCmd.Flags().String("host", "", "database host")
	directCmd.Flags().String("port", "", "database port")
	directCmd.Flags().String("user", "", "database user")
	directCmd.Flags().String("database", "", "database name (file path for sqlite)")

	viper.BindPFlag("direct.provider", directCmd.Flags().Lookup("provider"))
	viper.BindPFlag("direct.host", directCmd.Flags().Lookup("host"))
	viper.BindPFlag("direct.port", directCmd.Flags().Lookup("port"))
	viper.BindPFlag("direct.user", directCmd.Flags().Lookup("user"))
	viper.BindPFlag("direct.database", directCmd.Flags().Lookup("database"))
}
