package nonce

import (
	"context"
	"hash/fnv"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/c9s/exnonce/pkg/envvar"
	"github.com/c9s/exnonce/pkg/metrics"
	"github.com/c9s/exnonce/pkg/store"
	"github.com/c9s/exnonce/pkg/types"
	"github.com/c9s/exnonce/pkg/util"
)

var log = logrus.WithFields(logrus.Fields{
	"component": "nonce",
})

const (
	// DefaultNormalMargin is added to every candidate so that values stay
	// ahead of requests racing through other paths.
	DefaultNormalMargin = 100 * time.Millisecond

	// DefaultRecoveryMargin replaces the normal margin while a key is
	// resyncing. It has to clear whatever nonce the exchange has already
	// seen from a previous deploy or a parallel client.
	DefaultRecoveryMargin = 5 * time.Second

	// DefaultCounterTTL bounds idle counters in the shared store. Active
	// keys refresh it on every issue.
	DefaultCounterTTL = time.Hour

	// disambiguatorRange bounds the per-process fallback disambiguator.
	// Fallback values land on the process's residue class modulo this
	// range, so the range also defines the fallback value spacing.
	disambiguatorRange = 1000
)

// OffsetProvider reports the clock offset in milliseconds to apply for an
// exchange. *timesync.Syncer implements it.
type OffsetProvider interface {
	Offset(ctx context.Context, exchange types.ExchangeName) int64
}

// keyState carries the per-key lock and the last value handed out by this
// process, which floors every later candidate.
type keyState struct {
	sync.Mutex
	lastIssued int64
}

// Generator issues strictly increasing nonce values per NonceKey. Values are
// anchored to exchange time through the shared counter store; when the store
// is unreachable it degrades to a process-local sequence on a per-process
// residue class, so distinct processes cannot issue the same value.
type Generator struct {
	store   store.Store
	offsets OffsetProvider
	resync  *ResyncController

	NormalMargin   time.Duration
	RecoveryMargin time.Duration
	CounterTTL     time.Duration

	disambiguator int64

	mu     sync.Mutex
	states map[types.NonceKey]*keyState

	fallbackLogger *util.WarnFirstLogger

	timeNowFn func() time.Time
}

func NewGenerator(st store.Store, offsets OffsetProvider, resync *ResyncController) *Generator {
	return &Generator{
		store:          st,
		offsets:        offsets,
		resync:         resync,
		NormalMargin:   DefaultNormalMargin,
		RecoveryMargin: DefaultRecoveryMargin,
		CounterTTL:     DefaultCounterTTL,
		disambiguator:  defaultDisambiguator(),
		states:         make(map[types.NonceKey]*keyState),
		fallbackLogger: util.NewWarnFirstLogger(10, time.Minute, log),
	}
}

// defaultDisambiguator derives the process residue class from the host name
// and a per-process random id. EXNONCE_DISAMBIGUATOR pins it explicitly for
// deployments that want disjoint classes guaranteed rather than probable.
func defaultDisambiguator() int64 {
	if v, ok := envvar.Int64("EXNONCE_DISAMBIGUATOR"); ok {
		return ((v % disambiguatorRange) + disambiguatorRange) % disambiguatorRange
	}

	hostname, _ := os.Hostname()
	h := fnv.New32a()
	h.Write([]byte(hostname + "/" + uuid.New().String()))
	return int64(h.Sum32() % disambiguatorRange)
}

// Disambiguator returns the process residue class, for diagnostics.
func (g *Generator) Disambiguator() int64 {
	return g.disambiguator
}

func (g *Generator) now() time.Time {
	if g.timeNowFn != nil {
		return g.timeNowFn()
	}

	return time.Now()
}

func (g *Generator) offset(ctx context.Context, exchange types.ExchangeName) int64 {
	if g.offsets == nil {
		return 0
	}

	return g.offsets.Offset(ctx, exchange)
}

func (g *Generator) state(key types.NonceKey) *keyState {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.states[key]
	if !ok {
		st = &keyState{}
		g.states[key] = st
	}

	return st
}

// Next issues the next nonce for the key. It fails only on context
// cancellation: store outages degrade to the local fallback path instead.
func (g *Generator) Next(ctx context.Context, key types.NonceKey) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	st := g.state(key)
	st.Lock()
	defer st.Unlock()

	margin := g.NormalMargin
	if g.resync != nil && g.resync.IsResyncing(key) {
		margin = g.RecoveryMargin
	}

	candidate := g.now().UnixMilli() + g.offset(ctx, key.Exchange) + margin.Milliseconds()
	if candidate <= st.lastIssued {
		candidate = st.lastIssued + 1
	}

	issued, err := g.store.IncrMax(ctx, CounterKey(key), candidate, g.CounterTTL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}

		v := g.nextFallback(key, st, candidate)
		g.fallbackLogger.WarnOrError(err, "counter store unreachable, issued local fallback nonce %d for %s", v, key)
		metrics.NonceFallbackMetrics.With(prometheus.Labels{"exchange": key.Exchange.String()}).Inc()
		metrics.NonceIssuedMetrics.With(prometheus.Labels{"exchange": key.Exchange.String(), "mode": "fallback"}).Inc()
		return v, nil
	}

	if issued <= st.lastIssued {
		// the store fell behind this process, e.g. a flushed or restored
		// server. Trust the local floor and push the store forward.
		issued = st.lastIssued + 1
		g.pushForward(ctx, key, issued)
	}

	st.lastIssued = issued
	metrics.NonceIssuedMetrics.With(prometheus.Labels{"exchange": key.Exchange.String(), "mode": "store"}).Inc()
	return issued, nil
}

// nextFallback issues from the process-local sequence. The value is the
// smallest member of this process's residue class that is greater than both
// the candidate and everything issued before, so fallback values from two
// processes can never meet even on identical clocks. Called under the key
// lock.
func (g *Generator) nextFallback(key types.NonceKey, st *keyState, candidate int64) int64 {
	base := candidate
	if base <= st.lastIssued {
		base = st.lastIssued + 1
	}

	v := base - base%disambiguatorRange + g.disambiguator
	if v < base {
		v += disambiguatorRange
	}

	st.lastIssued = v
	return v
}

// pushForward writes the corrected floor back to the store, best effort: the
// returned nonce is already safe without it.
func (g *Generator) pushForward(ctx context.Context, key types.NonceKey, floor int64) {
	_, err := g.store.IncrMax(ctx, CounterKey(key), floor, g.CounterTTL)
	util.WarnOnErr(err, "failed to push the stale counter forward for %s", key)
}

// CounterKey is the store key of a nonce sequence.
func CounterKey(key types.NonceKey) string {
	return "nonce:" + key.String()
}
