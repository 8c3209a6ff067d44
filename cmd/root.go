package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rana718/schemaseed/internal/config"
)

var (
	cfgFile   string
	configErr error
	Version   = "1.0.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════╗",
		"║                                                  ║",
		"║      🌱  schemaseed                              ║",
		"║      customers • products • orders               ║",
		"║                                                  ║",
		"╚══════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("            ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "schemaseed",
	Short: "Reset a sample shop schema and fill it with test data",
	Long: `
schemaseed drops and recreates the customers, products and orders tables,
inserts a fixed sample dataset and reads it back for verification.

Transports:
- dataapi: Aurora through the RDS Data API (no network path to the cluster needed)
- direct:  a MySQL, PostgreSQL or SQLite connection`,

	SilenceErrors: true,
	SilenceUsage:  true,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("schemaseed version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

// Execute runs the CLI and reports any failure on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(os.Stderr, err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./schemaseed.config.json)")
	rootCmd.PersistentFlags().String("data", "", "YAML dataset to insert instead of the built-in sample")
	rootCmd.PersistentFlags().String("format", "", "verification output: lines or table")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Skip confirmations")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log every statement to stderr")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")

	viper.BindPFlag("seed.data_file", rootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("seed.format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("seed.force", rootCmd.PersistentFlags().Lookup("force"))
}

func initConfig() {
	godotenv.Load(".env")
	godotenv.Load(".env.local")

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("schemaseed.config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("failed to read config: %w", err)
		}
	}
}

// loadConfig returns the merged flag, env and file configuration.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
