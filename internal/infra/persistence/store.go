// Package persistence selects the account store backend configured in store.driver.
package persistence

import (
	"log/slog"

	"identity/config"
	"identity/internal/domain/repository"
	"identity/internal/errors"
	"identity/internal/infra/persistence/memory"
	"identity/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewAccountRepository builds the account store for the configured driver.
func NewAccountRepository(params Params) (repository.AccountRepository, error) {
	switch params.Config.Store.Driver {
	case config.StoreDriverMemory:
		params.Logger.Warn("Using in-memory account store; accounts are lost on restart")

		return memory.NewAccountRepository(), nil
	case config.StoreDriverPostgres, "":
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}

		return postgres.NewAccountRepository(db), nil
	default:
		return nil, errors.Errorf("unknown store driver %q", params.Config.Store.Driver)
	}
}
