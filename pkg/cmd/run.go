package cmd

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/c9s/exnonce/pkg/cmd/cmdutil"
	"github.com/c9s/exnonce/pkg/exnonce"
	"github.com/c9s/exnonce/pkg/types"
)

func init() {
	RunCmd.Flags().String("metrics-bind", ":9090", "prometheus metrics bind address")
	RunCmd.Flags().Bool("no-metrics", false, "do not serve the metrics endpoint")
	RootCmd.AddCommand(RunCmd)
}

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "run the nonce routing service from the config file",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}

		if len(configFile) == 0 {
			return errors.New("--config option is required")
		}

		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return err
		}

		userConfig, err := exnonce.Load(configFile)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		return runConfig(ctx, cmd, userConfig)
	},
}

func runConfig(basectx context.Context, cmd *cobra.Command, userConfig *exnonce.Config) error {
	ctx, cancelService := context.WithCancel(basectx)
	defer cancelService()

	if len(userConfig.Credentials) == 0 {
		for _, n := range types.SupportedExchanges {
			if viper.IsSet(n.String() + "-api-key") {
				userConfig.Credentials = append(userConfig.Credentials, exnonce.CredentialConfig{
					UserID:    "default",
					Exchange:  n,
					APIKey:    viper.GetString(n.String() + "-api-key"),
					APISecret: viper.GetString(n.String() + "-api-secret"),
				})
			}
		}
	}

	environ := exnonce.NewEnvironment()
	if err := exnonce.BootstrapEnvironment(ctx, environ, userConfig); err != nil {
		return err
	}

	if err := environ.Start(ctx); err != nil {
		return err
	}

	noMetrics, err := cmd.Flags().GetBool("no-metrics")
	if err != nil {
		return err
	}

	var metricsServer *http.Server
	if !noMetrics {
		metricsBind, err := cmd.Flags().GetString("metrics-bind")
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok\n"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		metricsServer = &http.Server{Addr: metricsBind, Handler: mux}
		go func() {
			log.Infof("serving metrics on %s/metrics", metricsBind)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server error")
			}
		}()
	}

	cmdutil.WaitForSignal(ctx, syscall.SIGINT, syscall.SIGTERM)

	log.Infof("shutting down...")
	cancelService()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("metrics server shutdown error")
		}
	}

	if err := environ.Shutdown(); err != nil {
		log.WithError(err).Error("environment shutdown error")
	}

	return nil
}
