package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var addMime string

var addCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Store files in the blob store",
	Long: `Store file contents in the content-addressed blob store and record
them in the catalog. Storing the same content twice is a no-op for the
file itself; the catalog entry's filename and MIME type are refreshed.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addMime, "mime", "", "Override the detected MIME type")
}

func runAdd(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	green := color.New(color.FgGreen)

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			exitError("failed to read %s: %v", path, err)
		}

		rec, err := c.Blobs.Store(filepath.Base(path), data, addMime)
		if err != nil {
			exitError("failed to store %s: %v", path, err)
		}

		green.Printf("%s", shortHash(rec.SHA256))
		fmt.Printf("  %s  %d bytes  %s\n", rec.Mime, rec.Size, rec.Filename)
	}
}
