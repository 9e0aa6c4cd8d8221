package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/facepill/internal/config"
	"github.com/andresmejia3/facepill/internal/log"
	"github.com/andresmejia3/facepill/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Commands declare their database needs through this annotation.
const (
	dbAnnotation = "facepill/db"
	dbRequired   = "required"
	dbOptional   = "optional"
)

var (
	// DB is the global database connection shared by subcommands. It stays
	// nil when persistence is disabled.
	DB *store.Store
	// Log is the application logger, ready once PersistentPreRunE has run.
	Log *logrus.Logger
	// dbURL is the connection string
	dbURL   string
	verbose bool

	// Environment (and .env) values become the flag defaults below.
	cfg, cfgErr = config.Load("")
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "facepill",
	Short:   "Swallow the pill, pull a funny face, let the webcam judge",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgErr != nil {
			return fmt.Errorf("failed to load configuration: %w", cfgErr)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Logging to the console would tear the play screen, so it is opt-in.
		logOpts := log.Options{Level: cfg.LogLevel, File: cfg.LogFile}
		if verbose {
			logOpts.Console = os.Stderr
		}
		Log = log.Must(logOpts)

		need := cmd.Annotations[dbAnnotation]
		if need == "" {
			return nil
		}

		url := config.DatabaseURL(dbURL)
		if url == "" {
			if need == dbRequired {
				return fmt.Errorf("no database configured: pass --db or set POSTGRES_HOST")
			}
			Log.Info("round history disabled: no database configured")
			return nil
		}

		// Use the command's context (which will be cancellable) for the connection
		var err error
		DB, err = store.New(cmd.Context(), url)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			// and we still need to send the "Close" command to the DB.
			DB.Close(context.Background())
		}
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for round history (default: built from POSTGRES_* or disabled)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Rotating log file (empty disables)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also log to stderr")
}

// addDetectorFlags registers the flags shared by commands that run inference.
func addDetectorFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Detector, "detector", cfg.Detector, "Landmark detector: python or websocket")
	cmd.Flags().StringVar(&cfg.WorkerCmd, "worker-cmd", cfg.WorkerCmd, "Command line of the python landmark worker")
	cmd.Flags().StringVar(&cfg.DetectorURL, "detector-url", cfg.DetectorURL, "WebSocket URL of the landmark service")
}
