package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deeprecall/recall/internal/models"
	"github.com/deeprecall/recall/internal/replicate"
	"github.com/deeprecall/recall/internal/secrets"
)

var flushCmd = &cobra.Command{
	Use:   "flush <changes.json | ->",
	Short: "Apply a batch of queued write changes to the remote store",
	Long: `Read a JSON array of write changes (the local change queue's wire
format) from a file or stdin and apply it against the remote Postgres
store. Changes are applied strictly in order on one connection; each
change succeeds or fails on its own.`,
	Args: cobra.ExactArgs(1),
	Run:  runFlush,
}

func runFlush(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	var raw []byte
	var err error
	if args[0] == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		exitError("failed to read changes: %v", err)
	}

	var changes []models.WriteChange
	if err := json.Unmarshal(raw, &changes); err != nil {
		exitError("failed to parse changes: %v", err)
	}
	if len(changes) == 0 {
		fmt.Println("No changes to flush")
		return
	}

	password, err := c.Secrets.Get("postgres")
	if err != nil && !errors.Is(err, secrets.ErrNotFound) {
		exitError("failed to read postgres password: %v", err)
	}

	engine := replicate.NewEngine(replicate.PostgresOpener(c.Config.DSN(password)), c.Logger)
	results := engine.ApplyBatch(context.Background(), changes)

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
			green.Printf("ok    ")
			fmt.Println(res.ID)
		} else {
			red.Printf("fail  ")
			fmt.Printf("%s  %s\n", res.ID, res.Error)
		}
	}
	fmt.Printf("Flushed %d change(s): %d succeeded, %d failed\n",
		len(results), succeeded, len(results)-succeeded)
}
