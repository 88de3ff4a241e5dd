package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deeprecall/recall/internal/blob"
	"github.com/deeprecall/recall/internal/catalog"
	"github.com/deeprecall/recall/internal/config"
)

var (
	initPgHost     string
	initPgPort     int
	initPgUser     string
	initPgDatabase string
	initPgSSLMode  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a .recall data directory",
	Long: `Create the .recall directory in the current working directory with the
catalog database, the blob storage root, and the remote store configuration.

The Postgres password is not written to the config; store it with:
  recall login`,
	Run: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initPgHost, "pg-host", "localhost", "Postgres host")
	initCmd.Flags().IntVar(&initPgPort, "pg-port", 5432, "Postgres port")
	initCmd.Flags().StringVar(&initPgUser, "pg-user", "recall", "Postgres user")
	initCmd.Flags().StringVar(&initPgDatabase, "pg-database", "recall", "Postgres database")
	initCmd.Flags().StringVar(&initPgSSLMode, "pg-sslmode", "disable", "Postgres sslmode (disable, require)")
}

func runInit(cmd *cobra.Command, args []string) {
	cfg, err := config.Initialize(config.Postgres{
		Host:     initPgHost,
		Port:     initPgPort,
		User:     initPgUser,
		Database: initPgDatabase,
		SSLMode:  initPgSSLMode,
	})
	if err != nil {
		exitError("%v", err)
	}

	cat, err := catalog.New(cfg.CatalogPath())
	if err != nil {
		exitError("failed to open catalog: %v", err)
	}
	defer cat.Close()

	if err := cat.Initialize(); err != nil {
		exitError("failed to initialize catalog: %v", err)
	}
	if _, err := blob.NewStore(cfg.BlobsPath(), cat); err != nil {
		exitError("failed to create blob root: %v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Initialized recall directory at %s\n", cfg.RecallPath())
}
