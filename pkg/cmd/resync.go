package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/c9s/exnonce/pkg/exnonce"
	"github.com/c9s/exnonce/pkg/nonce"
)

func init() {
	resyncCmd.Flags().String("exchange", "kraken", "exchange name")
	resyncCmd.Flags().String("api-key", "", "api key, fingerprinted into the account id")
	resyncCmd.Flags().String("account", "", "account fingerprint, alternative to --api-key")
	RootCmd.AddCommand(resyncCmd)
}

// go run ./cmd/exnonce resync --exchange=kraken --account=2eb75a3c91d5
var resyncCmd = &cobra.Command{
	Use:          "resync [--exchange EXCHANGE] [--api-key KEY | --account FINGERPRINT]",
	Short:        "drop the stored counter so the next nonce re-anchors to exchange time",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		userConfig, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		key, err := nonceKeyFromFlags(cmd)
		if err != nil {
			return err
		}

		environ := exnonce.NewEnvironment()
		if err := environ.ConfigureStore(userConfig.Redis); err != nil {
			return err
		}

		if err := environ.Store.Del(ctx, nonce.CounterKey(key)); err != nil {
			return err
		}

		color.Green("counter for %s dropped, the next call re-anchors to exchange time", key)
		return nil
	},
}
