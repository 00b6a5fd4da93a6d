package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/app"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/config"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/seed"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/logger"
)

// flagEnv maps a command flag onto the environment variable it overrides.
type flagEnv struct {
	flag string
	env  string
}

// loadConfig reads the catalog config from the environment, letting any
// flag the user set explicitly take precedence.
func loadConfig(cmd *cobra.Command, opts *rootOptions, overrides ...flagEnv) (*config.Config, error) {
	env := opts.env()
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		env["LOG_LEVEL"] = f.Value.String()
	}
	for _, o := range overrides {
		f := cmd.Flags().Lookup(o.flag)
		if f != nil && f.Changed {
			env[o.env] = f.Value.String()
		}
	}
	return config.LoadWithEnvironment(env)
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts,
				flagEnv{"store", "CATALOG_STORE"},
				flagEnv{"cart-store", "CART_STORE"},
				flagEnv{"port", "CATALOG_HTTP_PORT"},
				flagEnv{"seed", "SEED_ON_START"},
			)
			if err != nil {
				return err
			}

			log := logger.New(config.ServiceName, cfg.LogLevel)
			log.Info("starting catalog service",
				slog.String("environment", cfg.Environment),
				slog.Int("http_port", cfg.HTTPPort),
				slog.String("store", cfg.Store),
				slog.String("cart_store", cfg.CartStore),
			)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			application, err := app.NewApp(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}
			return application.Run(ctx)
		},
	}

	cmd.Flags().String("store", config.StoreMemory, "product store: memory|mongo|postgres|elasticsearch")
	cmd.Flags().String("cart-store", config.CartStoreMemory, "cart store: memory|redis")
	cmd.Flags().Int("port", 8001, "HTTP port")
	cmd.Flags().Bool("seed", false, "seed the product store from the embedded fixture on start")
	return cmd
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the contents of the product store with the embedded fixture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts, flagEnv{"store", "CATALOG_STORE"})
			if err != nil {
				return err
			}
			log := logger.NewWithWriter("fitzdoctl", cfg.LogLevel, cmd.ErrOrStderr())

			products, err := seed.Load()
			if err != nil {
				return err
			}

			if dryRun {
				res := seed.Result{Inconsistent: []string{}}
				for _, p := range seed.Inconsistent(products) {
					res.Inconsistent = append(res.Inconsistent, p.ID)
				}
				return writeJSON(cmd.OutOrStdout(), res)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			backend, err := app.OpenProductStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := backend.Close(context.Background()); err != nil {
					log.Error("product store close error", slog.String("error", err.Error()))
				}
			}()

			res, err := seed.Run(ctx, backend.Store, products, log)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().String("store", config.StoreMemory, "product store: memory|mongo|postgres|elasticsearch")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the fixture and report pricing inconsistencies without writing")
	return cmd
}
