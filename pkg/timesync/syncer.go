package timesync

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/c9s/exnonce/pkg/metrics"
	"github.com/c9s/exnonce/pkg/store"
	"github.com/c9s/exnonce/pkg/types"
	"github.com/c9s/exnonce/pkg/util"
)

var syncLogger = log.WithFields(log.Fields{
	"component": "timesync",
})

const (
	// DefaultLocalTTL bounds how long a measured offset is trusted before the
	// next call triggers a refresh.
	DefaultLocalTTL = 2 * time.Minute

	// DefaultStoreTTL bounds the shared offset cache. Slightly longer than
	// the local TTL so a freshly started instance can pick up a recent value.
	DefaultStoreTTL = 3 * time.Minute

	// DefaultRetryInterval throttles refresh attempts against an unreachable
	// time endpoint.
	DefaultRetryInterval = 5 * time.Second
)

// TimeSource reports an exchange's server time, usually from its public time
// endpoint.
type TimeSource interface {
	ServerTime(ctx context.Context) (time.Time, error)
}

type offsetEntry struct {
	offsetMs    int64
	updatedAt   time.Time
	attemptedAt time.Time
}

// Syncer tracks the clock offset between this host and each exchange.
// Offset never fails: when the time endpoint is unreachable it serves the
// last known value, falling back to the shared store and finally to zero.
type Syncer struct {
	store store.Store

	LocalTTL      time.Duration
	StoreTTL      time.Duration
	RetryInterval time.Duration

	mu      sync.RWMutex
	sources map[types.ExchangeName]TimeSource
	offsets map[types.ExchangeName]*offsetEntry

	sf singleflight.Group

	timeNowFn func() time.Time
}

func NewSyncer(st store.Store) *Syncer {
	return &Syncer{
		store:         st,
		LocalTTL:      DefaultLocalTTL,
		StoreTTL:      DefaultStoreTTL,
		RetryInterval: DefaultRetryInterval,
		sources:       make(map[types.ExchangeName]TimeSource),
		offsets:       make(map[types.ExchangeName]*offsetEntry),
	}
}

func (s *Syncer) now() time.Time {
	if s.timeNowFn != nil {
		return s.timeNowFn()
	}

	return time.Now()
}

func (s *Syncer) RegisterSource(exchange types.ExchangeName, src TimeSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[exchange] = src
}

// Offset returns the current offset in milliseconds for the exchange: the
// number to add to local wall-clock time to approximate the exchange's
// clock. It never blocks on a dead endpoint longer than one in-flight
// refresh, and it never errors.
func (s *Syncer) Offset(ctx context.Context, exchange types.ExchangeName) int64 {
	if off, ok := s.freshOffset(exchange); ok {
		return off
	}

	v, _, _ := s.sf.Do(exchange.String(), func() (interface{}, error) {
		return s.refresh(ctx, exchange), nil
	})

	return v.(int64)
}

// Sync forces a refresh against the exchange time endpoint. Unlike Offset it
// surfaces the measurement error, so the caller can retry with backoff.
func (s *Syncer) Sync(ctx context.Context, exchange types.ExchangeName) error {
	s.mu.RLock()
	src, ok := s.sources[exchange]
	s.mu.RUnlock()

	if !ok {
		return errors.Errorf("no time source registered for exchange %s", exchange)
	}

	off, err := s.measure(ctx, src)
	if err != nil {
		return errors.Wrapf(err, "time sync failed for exchange %s", exchange)
	}

	s.setOffset(ctx, exchange, off)
	return nil
}

func (s *Syncer) freshOffset(exchange types.ExchangeName) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.offsets[exchange]
	if !ok {
		return 0, false
	}

	if s.now().Sub(e.updatedAt) > s.LocalTTL {
		return 0, false
	}

	return e.offsetMs, true
}

// refresh measures the offset, falling back to the last known value when the
// endpoint is unreachable. Concurrent callers are collapsed by singleflight.
func (s *Syncer) refresh(ctx context.Context, exchange types.ExchangeName) int64 {
	// winners of the flight may have refreshed already
	if off, ok := s.freshOffset(exchange); ok {
		return off
	}

	s.mu.RLock()
	src, hasSource := s.sources[exchange]
	e, hasEntry := s.offsets[exchange]
	attemptOK := !hasEntry || s.now().Sub(e.attemptedAt) >= s.RetryInterval
	s.mu.RUnlock()

	if hasSource && attemptOK {
		off, err := s.measure(ctx, src)
		if err == nil {
			s.setOffset(ctx, exchange, off)
			return off
		}

		syncLogger.WithError(err).Warnf("time sync failed for exchange %s, keeping last known offset", exchange)
		s.markAttempt(exchange)
	}

	return s.lastKnown(ctx, exchange)
}

// measure reads the server time once and compensates for half the round
// trip, assuming the reading happened mid-flight.
func (s *Syncer) measure(ctx context.Context, src TimeSource) (int64, error) {
	before := s.now()
	serverTime, err := src.ServerTime(ctx)
	if err != nil {
		return 0, err
	}

	rtt := s.now().Sub(before)
	local := before.Add(rtt / 2)
	return serverTime.Sub(local).Milliseconds(), nil
}

func (s *Syncer) setOffset(ctx context.Context, exchange types.ExchangeName, offsetMs int64) {
	now := s.now()

	s.mu.Lock()
	s.offsets[exchange] = &offsetEntry{
		offsetMs:    offsetMs,
		updatedAt:   now,
		attemptedAt: now,
	}
	s.mu.Unlock()

	metrics.ClockOffsetMetrics.With(prometheus.Labels{"exchange": exchange.String()}).Set(float64(offsetMs))
	syncLogger.Debugf("exchange %s clock offset = %dms", exchange, offsetMs)

	if s.store != nil {
		util.WarnOnErr(s.store.Set(ctx, offsetKey(exchange), offsetMs, s.StoreTTL),
			"failed to publish clock offset for exchange %s", exchange)
	}
}

func (s *Syncer) markAttempt(exchange types.ExchangeName) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.offsets[exchange]
	if !ok {
		e = &offsetEntry{}
		s.offsets[exchange] = e
	}

	e.attemptedAt = s.now()
}

// lastKnown serves the stale local value, then the shared store, then zero.
func (s *Syncer) lastKnown(ctx context.Context, exchange types.ExchangeName) int64 {
	s.mu.RLock()
	e, ok := s.offsets[exchange]
	s.mu.RUnlock()

	if ok && !e.updatedAt.IsZero() {
		return e.offsetMs
	}

	if s.store != nil {
		if off, err := s.store.Get(ctx, offsetKey(exchange)); err == nil {
			// another instance measured this recently, adopt it
			s.mu.Lock()
			s.offsets[exchange] = &offsetEntry{
				offsetMs:    off,
				updatedAt:   s.now(),
				attemptedAt: s.now(),
			}
			s.mu.Unlock()
			return off
		}
	}

	return 0
}

func offsetKey(exchange types.ExchangeName) string {
	return "offset:" + exchange.String()
}
