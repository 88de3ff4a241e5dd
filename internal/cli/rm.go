package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <hash>...",
	Short: "Remove blobs from the catalog",
	Long: `Remove catalog entries for the given hashes. The on-disk content is
retained: it is addressed by hash and may be shared by other entries or
external references.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRm,
}

func runRm(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	for _, hash := range args {
		if err := c.Blobs.Delete(hash); err != nil {
			exitError("failed to remove %s: %v", shortHash(hash), err)
		}
		fmt.Printf("Removed %s from catalog\n", shortHash(hash))
	}
}
