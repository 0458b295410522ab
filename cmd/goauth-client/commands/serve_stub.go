package commands

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/goAuthClient/internal/stubserver"
)

func serveStubCmd() *cobra.Command {
	var (
		addr     string
		secret   string
		ttl      time.Duration
		accounts []string
	)

	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Serve an in-memory identity endpoint for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			key := []byte(secret)
			if len(key) == 0 {
				key = make([]byte, 32)
				if _, err := rand.Read(key); err != nil {
					return err
				}
			}

			stub, err := stubserver.New(stubserver.Config{
				LoginPath:  config.Endpoint.LoginPath,
				SignupPath: config.Endpoint.SignupPath,
				Secret:     key,
				TokenTTL:   ttl,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			for _, acct := range accounts {
				user, pw, roles, err := parseAccount(acct)
				if err != nil {
					return err
				}
				if err := stub.AddAccount(user, pw, roles...); err != nil {
					return fmt.Errorf("account %s: %w", user, err)
				}
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Handler:           stub.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Serve(ln) }()
			fmt.Fprintf(cmd.OutOrStdout(), "Stub identity endpoint listening on http://%s\n", ln.Addr())

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (random when empty)")
	cmd.Flags().DurationVar(&ttl, "token-ttl", time.Hour, "lifetime of issued tokens")
	cmd.Flags().StringArrayVar(&accounts, "account", nil, "seed account as user:password[:ROLE,ROLE]")
	return cmd
}

func parseAccount(acct string) (user, pw string, roles []string, err error) {
	parts := strings.SplitN(acct, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return "", "", nil, fmt.Errorf("invalid --account %q, want user:password[:ROLE,ROLE]", acct)
	}
	if len(parts) == 3 && parts[2] != "" {
		roles = strings.Split(parts[2], ",")
	}
	return parts[0], parts[1], roles, nil
}
