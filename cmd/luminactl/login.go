package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Authenticate against the lead API and store the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}

			ctx, cancel := cmdContext()
			defer cancel()

			client := newClient()
			result, err := client.Login(ctx, args[0], password)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(configDir(), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(tokenPath(), []byte(result.Token), 0o600); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s\n", result.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}
