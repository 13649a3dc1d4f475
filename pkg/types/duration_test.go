package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshalYAML(t *testing.T) {
	var cfg struct {
		Margin Duration `yaml:"margin"`
	}

	err := yaml.Unmarshal([]byte("margin: 100ms"), &cfg)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.Margin.Duration())

	err = yaml.Unmarshal([]byte("margin: 5"), &cfg)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Margin.Duration())

	err = yaml.Unmarshal([]byte("margin: never"), &cfg)
	assert.Error(t, err)
}

func TestDurationUnmarshalJSON(t *testing.T) {
	var cfg struct {
		TTL Duration `json:"ttl"`
	}

	err := json.Unmarshal([]byte(`{"ttl": "1h"}`), &cfg)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.TTL.Duration())

	err = json.Unmarshal([]byte(`{"ttl": 90}`), &cfg)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.TTL.Duration())
}
