package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_exchangeName(t *testing.T) {
	assert.Equal(t, ExchangeKraken.String(), "kraken")
	name, err := ValidExchangeName("kraken")
	assert.Equal(t, name, ExchangeName("kraken"))
	assert.NoError(t, err)
	_, err = ValidExchangeName("dummy")
	assert.Error(t, err)
}

func Test_exchangeNameUnmarshal(t *testing.T) {
	var name ExchangeName
	assert.NoError(t, json.Unmarshal([]byte(`"kraken"`), &name))
	assert.Equal(t, ExchangeKraken, name)

	assert.Error(t, json.Unmarshal([]byte(`"hitbtc"`), &name))
}
