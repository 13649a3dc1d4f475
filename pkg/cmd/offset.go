package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/c9s/exnonce/pkg/exchange/kraken/krakenapi"
	"github.com/c9s/exnonce/pkg/exnonce"
	"github.com/c9s/exnonce/pkg/style"
	"github.com/c9s/exnonce/pkg/timesync"
	"github.com/c9s/exnonce/pkg/types"
)

func init() {
	RootCmd.AddCommand(offsetCmd)
}

// go run ./cmd/exnonce offset
var offsetCmd = &cobra.Command{
	Use:          "offset",
	Short:        "measure the clock offset against each configured exchange",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		userConfig, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		environ := exnonce.NewEnvironment()
		if err := environ.ConfigureStore(userConfig.Redis); err != nil {
			return err
		}

		exchanges := userConfig.Exchanges
		if len(exchanges) == 0 {
			exchanges = types.SupportedExchanges
		}

		syncer := timesync.NewSyncer(environ.Store)
		syncer.RegisterSource(types.ExchangeKraken, krakenapi.NewClient())

		t := style.NewStatusTable(os.Stdout, table.Row{"EXCHANGE", "OFFSET", "STATUS"})

		for _, name := range exchanges {
			status := "ok"
			if err := syncer.Sync(ctx, name); err != nil {
				status = err.Error()
			}

			offset := syncer.Offset(ctx, name)
			t.AppendRow(table.Row{name, fmt.Sprintf("%dms", offset), status})
		}

		t.Render()
		return nil
	},
}
