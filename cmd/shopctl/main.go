// Command shopctl is a terminal storefront: it browses products, keeps a
// recently viewed list and submits reviews against the shopfront API,
// falling back to a bundled catalog when the API is down.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shopfront/backend/internal/client/shopclient"
	"github.com/shopfront/backend/internal/client/staticdata"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/logger"
)

var version = "dev"

type options struct {
	baseURL   string
	stateFile string
	logLevel  string
}

// app holds what every subcommand needs, built once before the command runs
type app struct {
	log     *zap.Logger
	store   *shopclient.Store
	session *shopclient.StoreSession
	api     *shopclient.Client
	catalog *staticdata.Catalog
	cleanup func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	a := &app{}

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Browse the shopfront catalog from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(opts)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.cleanup != nil {
				a.cleanup()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "api", "", "API base URL including /api/v1 (overrides client.base_url)")
	root.PersistentFlags().StringVar(&opts.stateFile, "state", "", "local state file (overrides client.state_file)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newProductCmd(a),
		newRecentCmd(a),
		newReviewCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
	)
	return root
}

func (a *app) init(opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	clientCfg := cfg.Client
	if opts.baseURL != "" {
		clientCfg.BaseURL = opts.baseURL
	}
	if opts.stateFile != "" {
		clientCfg.StateFile = opts.stateFile
	}

	log, cleanup, err := logger.New(config.LogConfig{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log
	a.cleanup = cleanup

	a.store = shopclient.OpenStore(clientCfg.StateFile)
	a.session = shopclient.NewStoreSession(a.store)
	a.api, err = shopclient.NewClient(shopclient.Config{
		BaseURL:            clientCfg.BaseURL,
		Timeout:            clientCfg.Timeout,
		BreakerMaxFailures: clientCfg.BreakerMaxFailures,
		BreakerOpenTimeout: clientCfg.BreakerOpenTimeout,
		UserAgent:          "shopctl/" + version,
	}, a.session, log.Named("api"))
	if err != nil {
		return err
	}
	a.session.SetRefresher(a.api)

	a.catalog, err = staticdata.Default()
	if err != nil {
		return fmt.Errorf("failed to load static catalog: %w", err)
	}
	return nil
}
