package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

var (
	configPath  string
	logLevel    string
	baseURL     string
	auditEvents bool

	storeKind   string
	storeDir    string
	passphrase  string
	redisAddr   string
	postgresDSN string

	logger *slog.Logger
	config goAuthClient.Config
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "goauth-client",
		Short:         "Exchange credentials with an identity endpoint and keep the issued sessions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			cfg := goAuthClient.DefaultConfig()
			if configPath != "" {
				loaded, err := goAuthClient.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if err := goAuthClient.ApplyEnv(&cfg, nil); err != nil {
				return err
			}
			if strings.TrimSpace(baseURL) != "" {
				cfg.Endpoint.BaseURL = baseURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			config = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML configuration file")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&baseURL, "base-url", "", "identity endpoint base URL (overrides config)")
	pf.BoolVar(&auditEvents, "audit", false, "log audit events")
	pf.StringVar(&storeKind, "store", storeFile, "session store: memory, miniredis, redis, file or postgres")
	pf.StringVar(&storeDir, "store-dir", "", "file store directory (default ~/.goauth-client)")
	pf.StringVar(&passphrase, "passphrase", "", "file store passphrase (default $"+envPassphrase+" or prompt)")
	pf.StringVar(&redisAddr, "redis-addr", "", "redis address (default $REDIS_ADDR)")
	pf.StringVar(&postgresDSN, "postgres-dsn", "", "postgres connection string (default $"+envPostgresDSN+")")

	root.AddCommand(
		exchangeCmd(goAuthClient.OperationLogin),
		exchangeCmd(goAuthClient.OperationSignup),
		whoamiCmd(),
		logoutCmd(),
		serveStubCmd(),
		loadtestCmd(),
	)
	return root
}
