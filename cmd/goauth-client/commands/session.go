package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

func whoamiCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session of an account, or list accounts with a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeClient, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient()

			out := cmd.OutOrStdout()
			if username == "" {
				ids, err := client.Accounts(cmd.Context())
				if errors.Is(err, goAuthClient.ErrAccountsUnsupported) {
					return fmt.Errorf("--store=%s cannot list accounts; pass --username", storeKind)
				}
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					fmt.Fprintln(out, "No sessions")
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			sess, err := client.Session(cmd.Context(), username)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Account: %s\n", sess.AccountID)
			fmt.Fprintf(out, "Token type: %s\n", sess.TokenType)
			fmt.Fprintf(out, "Roles: %s\n", sess.Roles)
			fmt.Fprintf(out, "Created: %s\n", sess.CreatedAt.Format(time.RFC3339))
			if ttl := sess.TTL(time.Now()); ttl > 0 {
				fmt.Fprintf(out, "Expires in: %s\n", ttl.Round(time.Second))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account to show")
	return cmd
}

func logoutCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--username is required")
			}
			client, closeClient, err := newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient()

			if err := client.Logout(cmd.Context(), username); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account to sign out")
	return cmd
}
