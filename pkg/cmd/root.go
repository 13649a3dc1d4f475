package cmd

import (
	"os"
	"path"
	"strings"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/c9s/exnonce/pkg/cmd/cmdutil"

	_ "github.com/go-sql-driver/mysql"
)

var RootCmd = &cobra.Command{
	Use:   "exnonce",
	Short: "exnonce nonce and credential routing service",
	Long:  "exnonce keeps per-credential exchange nonces strictly increasing across processes and routes signed API calls",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "debug flag")
	RootCmd.PersistentFlags().String("config", "exnonce.yaml", "config file")

	// For global flags, assign a flag as a persistent flag on the root.
	RootCmd.PersistentFlags().String("log-directory", "log", "access log directory for production logging")

	RootCmd.PersistentFlags().String("redis-host", "", "redis host, overrides the config file")
	RootCmd.PersistentFlags().String("redis-port", "", "redis port, overrides the config file")

	cmdutil.PersistentFlags(RootCmd.PersistentFlags())
}

func Execute() {
	viper.SetEnvPrefix("EXNONCE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Enable environment variable binding, the env vars are not overloaded yet.
	viper.AutomaticEnv()

	// Once the flags are defined, we can bind config keys with flags.
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		log.WithError(err).Errorf("failed to bind persistent flags. please check the flag settings.")
	}

	if err := viper.BindPFlags(RootCmd.Flags()); err != nil {
		log.WithError(err).Errorf("failed to bind local flags. please check the flag settings.")
	}

	log.SetFormatter(&prefixed.TextFormatter{})

	logger := log.StandardLogger()
	if viper.GetBool("debug") {
		logger.SetLevel(log.DebugLevel)
	}

	environment := os.Getenv("EXNONCE_ENV")
	switch environment {
	case "production", "prod":
		log.SetFormatter(&log.JSONFormatter{})

		writer := &lumberjack.Logger{
			Filename:   path.Join(viper.GetString("log-directory"), "exnonce.log"),
			MaxSize:    100, // megabytes
			MaxBackups: 10,
			MaxAge:     30, // days
		}

		logger.AddHook(
			lfshook.NewHook(
				lfshook.WriterMap{
					log.DebugLevel: writer,
					log.InfoLevel:  writer,
					log.WarnLevel:  writer,
					log.ErrorLevel: writer,
					log.FatalLevel: writer,
				},
				&log.JSONFormatter{},
			),
		)
	}

	if err := RootCmd.Execute(); err != nil {
		log.WithError(err).Fatalf("cannot execute command")
	}
}
