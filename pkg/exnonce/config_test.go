package exnonce

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/exnonce/pkg/types"
)

var testConfigYAML = `---
exchanges:
- kraken

redis:
  host: 127.0.0.1
  port: "6379"
  namespace: exnonce

nonce:
  normalMargin: 150ms
  recoveryMargin: 6s
  counterTTL: 30m

clockSync:
  interval: 90s
  localTTL: 1m

credentials:
- userID: u1
  exchange: kraken
  apiKey: key-1
  apiSecret: c2VjcmV0LTE=
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "exnonce.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	config, err := Load(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, []types.ExchangeName{types.ExchangeKraken}, config.Exchanges)

	require.NotNil(t, config.Redis)
	assert.Equal(t, "127.0.0.1", config.Redis.Host)
	assert.Equal(t, "6379", config.Redis.Port)
	assert.Equal(t, "exnonce", config.Redis.Namespace)

	assert.Equal(t, 150*time.Millisecond, config.Nonce.NormalMargin.Duration())
	assert.Equal(t, 6*time.Second, config.Nonce.RecoveryMargin.Duration())
	assert.Equal(t, 30*time.Minute, config.Nonce.CounterTTL.Duration())

	assert.Equal(t, 90*time.Second, config.ClockSync.Interval.Duration())
	assert.Equal(t, time.Minute, config.ClockSync.LocalTTL.Duration())

	require.Len(t, config.Credentials, 1)
	assert.Equal(t, "u1", config.Credentials[0].UserID)
	assert.Equal(t, types.ExchangeKraken, config.Credentials[0].Exchange)
	assert.Equal(t, "key-1", config.Credentials[0].APIKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigBadYAML(t *testing.T) {
	_, err := Load(writeTestConfig(t, "nonce: [broken"))
	assert.Error(t, err)
}
