package exnonce

import (
	"context"

	"github.com/pkg/errors"
)

func BootstrapEnvironment(ctx context.Context, environ *Environment, userConfig *Config) error {
	if err := environ.ConfigureStore(userConfig.Redis); err != nil {
		return errors.Wrap(err, "store configure error")
	}

	if err := environ.ConfigureDatabase(userConfig.Database); err != nil {
		return errors.Wrap(err, "database configure error")
	}

	environ.ConfigureCredentials(userConfig.Credentials)

	if err := environ.ConfigureExchanges(userConfig.Exchanges); err != nil {
		return errors.Wrap(err, "exchange configure error")
	}

	if err := environ.Init(ctx, userConfig); err != nil {
		return errors.Wrap(err, "environment init error")
	}

	return nil
}
