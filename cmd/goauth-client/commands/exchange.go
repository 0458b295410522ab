package commands

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

func exchangeCmd(op goAuthClient.Operation) *cobra.Command {
	var username, pw string

	cmd := &cobra.Command{
		Use:   op.String(),
		Short: fmt.Sprintf("Run a %s exchange and store the issued session", op),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if username == "" {
				v, err := prompt("Username: ", false)
				if err != nil {
					return err
				}
				username = v
			}
			if pw == "" {
				v, err := prompt("Password: ", true)
				if err != nil {
					return err
				}
				pw = v
			}

			client, closeClient, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer closeClient()

			signals := make(signalChan, 8)
			sub, err := client.NewSubmitter(op, signals)
			if err != nil {
				return err
			}

			sig, err := runAttempt(ctx, sub, signals, goAuthClient.Credentials{Username: username, Password: pw})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch sig.Kind {
			case goAuthClient.SignalSessionReady:
				fmt.Fprintf(out, "Signed in as %s\n", sig.Session.AccountID)
				fmt.Fprintf(out, "Roles: %s\n", sig.Session.Roles)
				if !sig.Session.ExpiresAt.IsZero() {
					fmt.Fprintf(out, "Expires: %s\n", sig.Session.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
				}
				return nil
			case goAuthClient.SignalFieldError:
				return fmt.Errorf("%s: %s", sig.Field, sig.Message)
			case goAuthClient.SignalGenericNotification:
				return errors.New(sig.Message)
			default:
				return fmt.Errorf("unexpected signal %s", sig.Kind)
			}
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username (prompted when empty)")
	cmd.Flags().StringVar(&pw, "password", "", "account password (prompted when empty)")
	return cmd
}
