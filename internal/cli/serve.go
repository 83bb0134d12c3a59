package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hoomlabs/hoom/internal/cache"
	"github.com/hoomlabs/hoom/internal/db"
	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/logging"
	"github.com/hoomlabs/hoom/internal/promoter"
	"github.com/hoomlabs/hoom/internal/store"
	"github.com/hoomlabs/hoom/internal/store/postgrest"
	"github.com/hoomlabs/hoom/internal/store/sqlstore"
	"github.com/hoomlabs/hoom/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard",
		Long:  "Start an HTTP server for the dashboard pages and the JSON API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")

	return cmd
}

func runServe(ctx context.Context, cfg Config) error {
	logging.Setup(cfg.Dev)

	ts, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := newServer(ts, cfg)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.Port)
}

// newServer wires the services over a table store.
func newServer(ts store.TableStore, cfg Config) (*web.Server, error) {
	c := cache.New()
	promoterRepo := promoter.NewRepository(ts)
	listingRepo := listing.NewRepository(ts)
	loader := listing.NewLoader(listingRepo, promoterRepo, c, cfg.ListingsTTL)

	return web.NewServer(
		listing.NewService(listingRepo, loader, c),
		promoter.NewService(promoterRepo, c, cfg.PromotersTTL),
		web.Options{ExcludeTitle: cfg.ExcludeTitle},
	)
}

// openStore connects to the configured backend. The returned func
// releases it.
func openStore(ctx context.Context, cfg Config) (store.TableStore, func(), error) {
	switch cfg.Backend {
	case BackendPostgREST:
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, nil, errors.New("postgrest backend needs SUPABASE_URL and SUPABASE_KEY")
		}
		c, err := postgrest.New(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using table store", "backend", cfg.Backend, "url", cfg.SupabaseURL)
		return c, func() {}, nil

	case BackendSQLite:
		path := flagDB
		if path == "" {
			path = cfg.DBPath
		}
		if path == "" {
			var err error
			if path, err = db.DefaultPath(); err != nil {
				return nil, nil, err
			}
		}
		d, err := db.Open(path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using table store", "backend", cfg.Backend, "path", path)
		return sqlstore.New(d, db.SQLite), closer(d), nil

	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("postgres backend needs DATABASE_URL")
		}
		d, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using table store", "backend", cfg.Backend)
		return sqlstore.New(d, db.Postgres), closer(d), nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func closer(d *sql.DB) func() {
	return func() {
		if err := d.Close(); err != nil {
			slog.Warn("closing database", "error", err)
		}
	}
}
