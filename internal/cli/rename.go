package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <hash> <filename>",
	Short: "Update the user-facing filename of a blob",
	Args:  cobra.ExactArgs(2),
	Run:   runRename,
}

func runRename(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	hash, filename := args[0], args[1]

	rec, err := c.Blobs.Stat(hash)
	if err != nil {
		exitError("failed to stat blob: %v", err)
	}
	if rec == nil {
		exitError("unknown blob: %s", hash)
	}

	if err := c.Blobs.Rename(hash, filename); err != nil {
		exitError("failed to rename: %v", err)
	}
	fmt.Printf("Renamed %s to %q\n", shortHash(hash), filename)
}
