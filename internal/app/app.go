package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"medstore/m/internal/billing"
	"medstore/m/internal/catalog"
	"medstore/m/internal/clock"
	"medstore/m/internal/config"
	"medstore/m/internal/database"
	"medstore/m/internal/ledger"
	"medstore/m/internal/logger"
	"medstore/m/internal/migrations"
)

// Module provides the store and every service built on it. It expects a
// config.Config to be supplied.
var Module = fx.Module("medstore",
	fx.Provide(
		newLogger,
		newDB,
		clock.New,
		catalog.New,
		ledger.New,
		newCommitter,
	),
)

// Services is everything a command needs once the application has started.
type Services struct {
	fx.In

	Config    config.Config
	DB        *sqlx.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Catalog   *catalog.Store
	Ledger    *ledger.Ledger
	Committer *billing.Committer
}

// App is a started application.
type App struct {
	Services
	fx *fx.App
}

// Start wires the application for cfg and runs its start hooks.
func Start(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{}
	a.fx = fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		Module,
		fx.Invoke(func(s Services) { a.Services = s }),
	)
	if err := a.fx.Err(); err != nil {
		return nil, err
	}
	if err := a.fx.Start(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Close runs the stop hooks: the database is closed and the logger synced.
func (a *App) Close(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

func newLogger(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	return logger.New(lc, logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
}

func newDB(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*sqlx.DB, error) {
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database ready", zap.String("driver", cfg.DatabaseDriver))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})
	return db, nil
}

func newCommitter(db *sqlx.DB, store *catalog.Store, clk clock.Clock, log *zap.Logger, cfg config.Config) *billing.Committer {
	return billing.NewCommitter(db, store, clk, log, cfg.DefaultCustomer)
}
