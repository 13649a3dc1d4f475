package nonce

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c9s/exnonce/pkg/metrics"
	"github.com/c9s/exnonce/pkg/types"
)

// ResyncController tracks which nonce keys are recovering from an invalid
// nonce rejection. While a key is flagged, the generator applies the larger
// recovery margin so the next value jumps over whatever the exchange has
// already seen. The controller never retries anything itself.
//
// Flags are process-local: cross-process monotonicity is enforced by the
// counter store, the recovery margin only needs to cover the process that
// observed the rejection.
type ResyncController struct {
	mu    sync.Mutex
	flags map[types.NonceKey]time.Time
}

func NewResyncController() *ResyncController {
	return &ResyncController{
		flags: make(map[types.NonceKey]time.Time),
	}
}

// MarkInvalidNonce flags the key as resyncing. Repeat calls refresh the
// timestamp only, the metric counts transitions.
func (c *ResyncController) MarkInvalidNonce(key types.NonceKey) {
	c.mu.Lock()
	_, already := c.flags[key]
	c.flags[key] = time.Now()
	c.mu.Unlock()

	if !already {
		metrics.ResyncMarkedMetrics.With(prometheus.Labels{"exchange": key.Exchange.String()}).Inc()
		log.Warnf("nonce key %s entered resync mode", key)
	}
}

func (c *ResyncController) IsResyncing(key types.NonceKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.flags[key]
	return ok
}

// FlaggedAt returns when the key was last flagged, for diagnostics.
func (c *ResyncController) FlaggedAt(key types.NonceKey) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.flags[key]
	return t, ok
}

// Clear drops the resync flag after a successful call. Clearing an unflagged
// key is a no-op.
func (c *ResyncController) Clear(key types.NonceKey) {
	c.mu.Lock()
	_, ok := c.flags[key]
	delete(c.flags, key)
	c.mu.Unlock()

	if ok {
		metrics.ResyncClearedMetrics.With(prometheus.Labels{"exchange": key.Exchange.String()}).Inc()
		log.Infof("nonce key %s left resync mode", key)
	}
}
