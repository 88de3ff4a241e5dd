package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <hash>",
	Short: "Show catalog metadata for a blob",
	Args:  cobra.ExactArgs(1),
	Run:   runStat,
}

func runStat(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	rec, err := c.Blobs.Stat(args[0])
	if err != nil {
		exitError("failed to stat blob: %v", err)
	}
	if rec == nil {
		exitError("unknown blob: %s", args[0])
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		exitError("%v", err)
	}
	fmt.Println(string(out))
}
