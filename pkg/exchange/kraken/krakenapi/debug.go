package krakenapi

import (
	"github.com/sirupsen/logrus"

	"github.com/c9s/exnonce/pkg/envvar"
)

type LogFunction func(msg string, args ...interface{})

var log = logrus.WithFields(logrus.Fields{"exchange": "kraken"})

var debugf LogFunction

func getDebugFunction() LogFunction {
	if v, ok := envvar.Bool("DEBUG_KRAKEN"); ok && v {
		return log.Infof
	}

	return func(msg string, args ...interface{}) {}
}

func init() {
	debugf = getDebugFunction()
}
