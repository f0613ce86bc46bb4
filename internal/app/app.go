package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-faster/errors"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/config"
	"github.com/five82/storefront/internal/obs"
	"github.com/five82/storefront/internal/persist"
	"github.com/five82/storefront/internal/prefs"
	"github.com/five82/storefront/internal/shop"
	"github.com/five82/storefront/internal/ui"
)

// Options configure the storefront application.
type Options struct {
	ConfigPath string
	EnvFile    string // empty tries ./.env
	PollEvery  int    // seconds; zero uses the configured interval
}

// Run boots the storefront TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return errors.Wrap(err, "load env file")
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logger, logCloser, err := obs.New(obs.Options{Level: cfg.Log.Level, File: cfg.Log.File, Format: cfg.Log.Format})
	if err != nil {
		return errors.Wrap(err, "init logging")
	}
	defer func() { _ = logCloser.Close() }()

	backend, closeBackend, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer closeBackend()
	adapter := persist.NewAdapter(backend, logger)

	source, fetch, err := catalogSource(cfg.Catalog)
	if err != nil {
		return errors.Wrap(err, "init catalog")
	}

	persistErrs := make(chan error, 1)
	session := shop.Open(shop.Options{
		Adapter:        adapter,
		Catalog:        source,
		Pricing:        &cfg.Pricing,
		RecentLimit:    cfg.RecentlyViewed,
		Logger:         logger,
		OnPersistError: notifyPersistError(persistErrs),
	})

	interval := cfg.Catalog.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	logger.Info("storefront starting",
		slog.String("storage", cfg.Storage.Backend),
		slog.String("catalog", catalogLabel(cfg.Catalog)),
		slog.Duration("poll", interval))

	updates := StartPoller(ctx, fetch, interval, logger)

	return ui.Run(ui.Options{
		Context:       ctx,
		Session:       session,
		Updates:       updates,
		Prefs:         prefs.Load(adapter),
		PrefsStore:    adapter,
		StorageLabel:  storageLabel(cfg.Storage),
		Logger:        logger,
		LogFile:       cfg.Log.File,
		PersistErrors: persistErrs,
	})
}

// notifyPersistError forwards failed saves to ch without blocking the store
// that reported them. An undelivered error is replaced by the newer one.
func notifyPersistError(ch chan error) func(error) {
	return func(err error) {
		for {
			select {
			case ch <- err:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// openBackend returns the configured storage backend and a func that releases it.
func openBackend(ctx context.Context, cfg config.StorageConfig) (persist.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return persist.NewMemory(), func() {}, nil
	case config.BackendFile:
		dir, err := persist.NewDir(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return dir, func() {}, nil
	case config.BackendPostgres:
		pg, err := persist.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	default:
		return nil, nil, errors.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// catalogSource picks a local TOML catalog when one is configured, the HTTP
// catalog service otherwise. The returned FetchFunc feeds the poller.
func catalogSource(cfg config.CatalogConfig) (catalog.Source, FetchFunc, error) {
	if cfg.File != "" {
		static, err := catalog.LoadFile(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		fetch := func(ctx context.Context) ([]catalog.Item, error) {
			fresh, err := catalog.LoadFile(cfg.File)
			if err != nil {
				return nil, err
			}
			items, err := fresh.Products(ctx)
			if err != nil {
				return nil, err
			}
			static.Replace(items)
			return items, nil
		}
		return static, fetch, nil
	}

	client, err := catalog.NewClient(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Products, nil
}

func catalogLabel(cfg config.CatalogConfig) string {
	if cfg.File != "" {
		return cfg.File
	}
	return cfg.URL
}

func storageLabel(cfg config.StorageConfig) string {
	switch cfg.Backend {
	case config.BackendFile:
		return "file " + cfg.Dir
	case config.BackendPostgres:
		return "postgres"
	default:
		return cfg.Backend
	}
}
