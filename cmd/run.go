package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rana718/schemaseed/internal/config"
	"github.com/Rana718/schemaseed/internal/database"
	"github.com/Rana718/schemaseed/internal/database/common"
	"github.com/Rana718/schemaseed/internal/logger"
	"github.com/Rana718/schemaseed/internal/prompt"
	"github.com/Rana718/schemaseed/internal/sample"
	"github.com/Rana718/schemaseed/internal/seeder"
)

// seedRun is what a transport command hands to runSeed.
type seedRun struct {
	cfg        *config.Config
	adapter    database.Adapter
	connection common.ConnectionInfo
	resolver   seeder.Resolver
	prompter   *prompt.Prompter
	log        *zap.Logger

	// describe prints the target summary shown above the confirmation.
	describe func(w io.Writer, target seeder.Target)
	// success prints the transport's closing lines.
	success func(w io.Writer, report *seeder.Report)
}

func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logger.New(verbose, cmd.ErrOrStderr())
}

func runSeed(cmd *cobra.Command, run seedRun) error {
	out := cmd.OutOrStdout()

	dataset, err := sample.Load(run.cfg.Seed.DataFile)
	if err != nil {
		return err
	}

	confirm := func(target seeder.Target) (bool, error) {
		run.describe(out, target)
		if run.cfg.Seed.Force {
			return true, nil
		}
		return run.prompter.Confirm("Continue?")
	}

	s, err := seeder.New(run.adapter, seeder.Options{
		Connection: run.connection,
		Dataset:    dataset,
		Resolver:   run.resolver,
		Confirm:    confirm,
		Out:        out,
		Format:     run.cfg.Seed.Format,
		Logger:     run.log,
	})
	if err != nil {
		return err
	}

	report, err := s.Run(cmd.Context())
	if errors.Is(err, seeder.ErrAborted) {
		fmt.Fprintln(out, "Operation cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	run.success(out, report)
	return nil
}

func gatewaySuccess(w io.Writer, report *seeder.Report) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(w, "\n"+rule)
	color.New(color.FgGreen, color.Bold).Fprintln(w, "🎉 SUCCESS! Test data has been inserted into Aurora.")
	fmt.Fprintf(w, "Database used: %s\n", report.Target.Name)
	fmt.Fprintln(w, "Script completed successfully.")
	fmt.Fprintln(w, rule)
}

func directSuccess(w io.Writer, report *seeder.Report) {
	color.New(color.FgGreen, color.Bold).Fprintln(w, "\n🎉 Success! Test data has been inserted into the database.")
	fmt.Fprintln(w, "Script completed successfully.")
}
