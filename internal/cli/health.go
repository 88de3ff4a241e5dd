package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show blob storage health statistics",
	Run:   runHealth,
}

func runHealth(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	stats, err := c.Blobs.Stats()
	if err != nil {
		exitError("failed to read stats: %v", err)
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	fmt.Printf("Blobs:     %d (%d bytes)\n", stats.TotalBlobs, stats.TotalSize)
	green.Printf("Healthy:   %d\n", stats.Healthy)
	if stats.Missing > 0 {
		red.Printf("Missing:   %d\n", stats.Missing)
	}
	if stats.Modified > 0 {
		yellow.Printf("Modified:  %d\n", stats.Modified)
	}
	if stats.Relocated > 0 {
		yellow.Printf("Relocated: %d\n", stats.Relocated)
	}
}
