// Package app assembles the store, the services and the HTTP server from a
// Config.
package app

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"minitwitql/internal/account"
	"minitwitql/internal/auth"
	"minitwitql/internal/config"
	"minitwitql/internal/graph"
	"minitwitql/internal/server"
	"minitwitql/internal/store"
	"minitwitql/internal/store/memory"
	"minitwitql/internal/store/mongo"
	"minitwitql/internal/store/sqlite"
	"minitwitql/internal/timeline"
)

// OpenStore connects to the store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverMongo:
		st, err := mongo.Open(ctx, mongo.Options{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Messages: cfg.MessagesCollection,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, errors.Errorf("unknown store driver %q", cfg.Driver)
}

// App holds the running components.
type App struct {
	Store    store.Store
	Accounts *account.Service
	Timeline *timeline.Service
	Server   *server.Server
}

// New builds an App over st.
func New(cfg config.Config, st store.Store, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	accounts, err := account.New(st.Users(), tokens, log.Named("account"))
	if err != nil {
		return nil, err
	}
	messages := timeline.New(st.Messages(), st.Users(), log.Named("timeline"))

	api, err := graph.NewAPISchema(accounts, messages, log.Named("graphql"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing API schema")
	}
	login, err := graph.NewLoginSchema(accounts, log.Named("graphql"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing login schema")
	}

	srv, err := server.New(cfg.Server, server.Deps{
		Store:   st,
		Gate:    auth.NewGate(tokens),
		API:     api,
		Login:   login,
		Limiter: auth.NewLimiter(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst),
	}, log.Named("http"))
	if err != nil {
		return nil, err
	}
	return &App{Store: st, Accounts: accounts, Timeline: messages, Server: srv}, nil
}

// Run serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	return a.Server.Run(ctx)
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
