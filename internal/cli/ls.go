package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deeprecall/recall/internal/models"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all blobs in the catalog",
	Run:   runLs,
}

func runLs(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	records, err := c.Blobs.List()
	if err != nil {
		exitError("failed to list blobs: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("No blobs in catalog")
		return
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	for _, rec := range records {
		fmt.Printf("%s  %-24s  %10d  ", shortHash(rec.SHA256), rec.Mime, rec.Size)
		switch rec.Health {
		case models.HealthHealthy:
			green.Printf("%-9s", rec.Health)
		case models.HealthMissing:
			red.Printf("%-9s", rec.Health)
		default:
			yellow.Printf("%-9s", rec.Health)
		}
		if rec.Filename != "" {
			fmt.Printf("  %s", rec.Filename)
		}
		fmt.Println()
	}
}
