package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/c9s/exnonce/pkg/exnonce"
	"github.com/c9s/exnonce/pkg/nonce"
	"github.com/c9s/exnonce/pkg/store"
	"github.com/c9s/exnonce/pkg/style"
)

func init() {
	counterCmd.Flags().String("exchange", "kraken", "exchange name")
	counterCmd.Flags().String("api-key", "", "api key, fingerprinted into the account id")
	counterCmd.Flags().String("account", "", "account fingerprint, alternative to --api-key")
	counterCmd.Flags().Bool("bump", false, "issue one nonce to verify the counter advances")
	RootCmd.AddCommand(counterCmd)
}

// go run ./cmd/exnonce counter --exchange=kraken --account=2eb75a3c91d5
var counterCmd = &cobra.Command{
	Use:          "counter [--exchange EXCHANGE] [--api-key KEY | --account FINGERPRINT]",
	Short:        "inspect the shared nonce counter of a credential",
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

		value, err := environ.Store.Get(ctx, nonce.CounterKey(key))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				color.Yellow("no counter stored for %s, the first call will anchor it", key)
				return nil
			}

			return err
		}

		t := style.NewStatusTable(os.Stdout, table.Row{"KEY", "COUNTER", "LOCAL CLOCK", "LEAD"})

		nowMs := time.Now().UnixMilli()
		t.AppendRow(table.Row{key.String(), value, nowMs, fmt.Sprintf("%dms", value-nowMs)})
		t.Render()

		bump, err := cmd.Flags().GetBool("bump")
		if err != nil {
			return err
		}

		if bump {
			generator := nonce.NewGenerator(environ.Store, nil, nonce.NewResyncController())
			issued, err := generator.Next(ctx, key)
			if err != nil {
				return err
			}

			color.Green("issued %d", issued)
		}

		return nil
	},
}
