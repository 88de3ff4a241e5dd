package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deeprecall/recall/internal/authflow"
)

var (
	loginPassword string
	loginTimeout  time.Duration
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials for the remote store",
	Long: `Store the Postgres password in the secret store, or run the loopback
OAuth listener and wait for the provider to redirect back with an
authorization code.

With --password the password is stored directly and no listener runs.`,
	Run: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Store this Postgres password and exit")
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "How long to wait for the OAuth redirect")
}

func runLogin(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	green := color.New(color.FgGreen)

	if loginPassword != "" {
		if err := c.Secrets.Put("postgres", loginPassword); err != nil {
			exitError("failed to store password: %v", err)
		}
		green.Println("Stored Postgres password")
		return
	}

	listener, err := authflow.Start(0)
	if err != nil {
		exitError("failed to start callback listener: %v", err)
	}
	defer listener.Close()

	fmt.Printf("Waiting for OAuth redirect at %s\n", listener.RedirectURL())

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	code, err := listener.Wait(ctx)
	if err != nil {
		exitError("no redirect received: %v", err)
	}

	if err := c.Secrets.Put("oauth_code", code); err != nil {
		exitError("failed to store authorization code: %v", err)
	}
	green.Println("Login complete")
}
