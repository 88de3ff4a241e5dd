// Package cli implements the command-line interface for recall.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/deeprecall/recall/internal/blob"
	"github.com/deeprecall/recall/internal/catalog"
	"github.com/deeprecall/recall/internal/config"
	"github.com/deeprecall/recall/internal/secrets"
)

var (
	logLevel string
	logFile  string
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Blobs   *blob.Store
	Secrets secrets.Store
	Logger  *slog.Logger
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Catalog != nil {
		c.Catalog.Close()
	}
}

// initContext initializes config, catalog, blob store, and secrets
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	cat, err := catalog.New(cfg.CatalogPath())
	if err != nil {
		exitError("failed to open catalog: %v", err)
	}
	if err := cat.Initialize(); err != nil {
		cat.Close()
		exitError("failed to initialize catalog: %v", err)
	}

	blobs, err := blob.NewStore(cfg.BlobsPath(), cat)
	if err != nil {
		cat.Close()
		exitError("failed to open blob store: %v", err)
	}

	return &cmdContext{
		Config:  cfg,
		Catalog: cat,
		Blobs:   blobs,
		Secrets: secrets.NewFileStore(cfg.SecretsPath()),
		Logger:  setupLogger(),
	}
}

// setupLogger builds the slog logger from the global flags. With
// --log-file set, structured lines are appended there; otherwise logs go
// to stderr.
func setupLogger() *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			exitError("failed to open log file: %v", err)
		}
		return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Local-first sync layer for recall",
	Long: `recall manages the local content-addressed blob store for a personal
knowledge base and replicates queued record changes to the central
Postgres store, reconciling offline edits with last-writer-wins.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append structured logs to this file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(flushCmd)
	rootCmd.AddCommand(loginCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// shortHash returns the first 12 characters of a hash
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
