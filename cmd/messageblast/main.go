package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/LeventeLantos/message-blast/internal/config"
	"github.com/LeventeLantos/message-blast/internal/logging"
)

var envFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "messageblast: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messageblast",
		Short: "Send one personalized message to many contacts",
		Long: `messageblast opens a prefilled chat link for every contact of a batch,
either one contact at a time or in a paced autonomous run. Configuration
comes from the environment, optionally loaded from an env file.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file to load before reading configuration")
	cmd.AddCommand(
		newServeCmd(),
		newSendCmd(),
		newTUICmd(),
	)
	return cmd
}

// setup loads configuration and builds the process logger.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	// A missing env file is fine, the environment may already be set.
	_ = godotenv.Load(envFile)

	cfg, err := config.LoadAll()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}
