package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Reconcile the catalog against the blob root",
	Long: `Walk the blob storage root and reconcile the catalog against the actual
disk contents: discover untracked blobs, refresh metadata for known ones,
and mark entries whose backing files are gone as missing.`,
	Run: runScan,
}

func runScan(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	result, err := c.Blobs.Scan()
	if err != nil {
		exitError("scan failed: %v", err)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	green.Printf("Scan complete: ")
	fmt.Printf("%d added, %d updated, %d missing\n", result.Added, result.Updated, result.Deleted)

	if len(result.Errors) > 0 {
		red.Printf("%d file(s) failed:\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  %s\n", msg)
		}
	}
}
