package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/c9s/exnonce/pkg/exnonce"
	"github.com/c9s/exnonce/pkg/types"
)

// loadConfig reads the file behind --config. A missing file yields an empty
// config so the store and exchange flags still work on a bare host.
func loadConfig(cmd *cobra.Command) (*exnonce.Config, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if len(configFile) == 0 {
		return nil, errors.New("--config option is required")
	}

	if _, err := os.Stat(configFile); err == nil {
		return exnonce.Load(configFile)
	} else if os.IsNotExist(err) {
		return &exnonce.Config{}, nil
	} else {
		return nil, err
	}
}

// nonceKeyFromFlags resolves --exchange plus either --api-key or --account
// into the key the counter store is addressed by.
func nonceKeyFromFlags(cmd *cobra.Command) (types.NonceKey, error) {
	var key types.NonceKey

	exchangeName, err := cmd.Flags().GetString("exchange")
	if err != nil {
		return key, err
	}

	exchange, err := types.ValidExchangeName(exchangeName)
	if err != nil {
		return key, err
	}

	apiKey, err := cmd.Flags().GetString("api-key")
	if err != nil {
		return key, err
	}

	if apiKey != "" {
		return types.NewNonceKey(exchange, apiKey), nil
	}

	account, err := cmd.Flags().GetString("account")
	if err != nil {
		return key, err
	}

	if account == "" {
		return key, errors.New("either --api-key or --account is required")
	}

	return types.NonceKey{Exchange: exchange, Account: account}, nil
}
