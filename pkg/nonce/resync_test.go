package nonce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/c9s/exnonce/pkg/types"
)

func TestResyncControllerLifecycle(t *testing.T) {
	key := types.NonceKey{Exchange: types.ExchangeKraken, Account: "acct1"}
	rc := NewResyncController()

	assert.False(t, rc.IsResyncing(key))

	_, flagged := rc.FlaggedAt(key)
	assert.False(t, flagged)

	rc.MarkInvalidNonce(key)
	assert.True(t, rc.IsResyncing(key))

	at, flagged := rc.FlaggedAt(key)
	assert.True(t, flagged)
	assert.WithinDuration(t, time.Now(), at, time.Second)

	rc.Clear(key)
	assert.False(t, rc.IsResyncing(key))

	// clearing twice is fine
	rc.Clear(key)
	assert.False(t, rc.IsResyncing(key))
}

func TestResyncControllerMarkIsIdempotent(t *testing.T) {
	key := types.NonceKey{Exchange: types.ExchangeKraken, Account: "acct1"}
	rc := NewResyncController()

	rc.MarkInvalidNonce(key)
	first, _ := rc.FlaggedAt(key)

	time.Sleep(5 * time.Millisecond)
	rc.MarkInvalidNonce(key)
	second, _ := rc.FlaggedAt(key)

	assert.True(t, rc.IsResyncing(key))
	assert.True(t, second.After(first), "repeat marks should refresh the timestamp")
}

func TestResyncControllerKeysAreIndependent(t *testing.T) {
	k1 := types.NonceKey{Exchange: types.ExchangeKraken, Account: "acct1"}
	k2 := types.NonceKey{Exchange: types.ExchangeKraken, Account: "acct2"}

	rc := NewResyncController()
	rc.MarkInvalidNonce(k1)

	assert.True(t, rc.IsResyncing(k1))
	assert.False(t, rc.IsResyncing(k2))
}

func TestResyncControllerConcurrent(t *testing.T) {
	key := types.NonceKey{Exchange: types.ExchangeKraken, Account: "acct1"}
	rc := NewResyncController()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				rc.MarkInvalidNonce(key)
			} else {
				rc.Clear(key)
			}
			rc.IsResyncing(key)
		}(i)
	}

	wg.Wait()
}
