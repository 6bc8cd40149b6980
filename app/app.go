// Package app assembles the library's components from configuration: the
// sqlite snapshot store, the optional postgres remote, the optional sync
// event publisher, and the ledger on top of them. Presentation layers call
// Bootstrap once per session and Close on the way out.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ycaws1/expensy/config"
	"github.com/ycaws1/expensy/ledger"
	"github.com/ycaws1/expensy/logging"
	"github.com/ycaws1/expensy/session"
	"github.com/ycaws1/expensy/store"
	"github.com/ycaws1/expensy/store/postgres"
	"github.com/ycaws1/expensy/store/sqlite"
	"github.com/ycaws1/expensy/syncmq"
)

// App holds a wired session: the hydrated ledger plus the resources behind
// it that need closing.
type App struct {
	Ledger *ledger.Ledger

	log    *logging.Logger
	local  *sqlite.Store
	remote *postgres.Store
	mq     *syncmq.Client
}

// Bootstrap builds an App from cfg. The local store is mandatory; the
// remote store and the sync event publisher are optional and a failure to
// reach either degrades the session to local-only instead of failing it.
func Bootstrap(ctx context.Context, cfg *config.Config, gate session.Gate) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logging.New(logging.Config{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: "app",
	})

	local, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}

	a := &App{log: log, local: local}

	if cfg.DatabaseURL != "" {
		userID, _ := gate.CurrentUserID()
		remote, err := postgres.Open(postgres.Config{
			DatabaseURL: cfg.DatabaseURL,
			Timeout:     cfg.RemoteTimeout,
			UserID:      userID,
		})
		if err != nil {
			log.Warn("Failed to reach remote store, continuing local-only",
				logging.FieldError, err)
		} else if err := remote.EnsureSchema(ctx); err != nil {
			log.Warn("Failed to prepare remote schema, continuing local-only",
				logging.FieldError, err)
			remote.Close()
		} else {
			a.remote = remote
		}
	}

	var sinks []ledger.Sink
	if cfg.AMQPURL != "" {
		mq, err := syncmq.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.Warn("Failed to initialize sync event publisher, continuing without it",
				logging.FieldError, err)
		} else {
			log.Info("Initialized sync event publisher",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			a.mq = mq
			sinks = append(sinks, syncmq.NewSink(mq))
		}
	}

	// A nil *postgres.Store must stay a nil interface so the ledger skips
	// remote work entirely.
	var remote store.Remote
	if a.remote != nil {
		remote = a.remote
	}
	a.Ledger = ledger.New(local, remote, gate, ledger.Config{
		MaxInFlightSync: int64(cfg.MaxInFlightSync),
		Sinks:           sinks,
	})

	if err := a.Ledger.Hydrate(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to hydrate ledger: %w", err)
	}

	log.Info("Session ready",
		"records", a.Ledger.Len(),
		"remote_enabled", a.remote != nil,
		"sync_events_enabled", a.mq != nil)

	return a, nil
}

// Close drains in-flight remote attempts and releases every resource the
// bootstrap acquired. It is safe to call after a partial Bootstrap.
func (a *App) Close(ctx context.Context) error {
	var errs []string

	if a.Ledger != nil {
		if err := a.Ledger.Close(ctx); err != nil {
			errs = append(errs, fmt.Sprintf("ledger: %v", err))
		}
	}
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("sync event publisher: %v", err))
		}
	}
	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("remote store: %v", err))
		}
	}
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("local store: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close: %s", strings.Join(errs, "; "))
	}
	return nil
}
