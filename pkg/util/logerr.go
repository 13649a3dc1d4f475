package util

import (
	"time"

	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// WarnOnErr marks a deliberately swallowed error: the error is logged at
// warning level and dropped. Call sites use it for best-effort writes whose
// failure must not fail the operation.
func WarnOnErr(err error, msg string, args ...interface{}) bool {
	if err == nil {
		return false
	}

	log.WithError(err).Warnf(msg, args...)
	return true
}

type WarnFirstLogger struct {
	logger      logrus.FieldLogger
	warnLimiter *rate.Limiter
}

func NewWarnFirstLogger(threshold int, window time.Duration, logger logrus.FieldLogger) *WarnFirstLogger {
	return &WarnFirstLogger{
		logger:      logger,
		warnLimiter: rate.NewLimiter(rate.Every(window), threshold),
	}
}

func (w *WarnFirstLogger) WarnOrError(err error, msg string, args ...interface{}) {
	log := w.logger
	if err != nil {
		log = log.WithError(err)
	}

	if w.warnLimiter.Allow() {
		log.Warnf(msg, args...)
	} else {
		log.Errorf(msg, args...)
	}
}
