package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type ExchangeName string

func (n *ExchangeName) Value() (driver.Value, error) {
	return n.String(), nil
}

func (n *ExchangeName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "kraken", "max", "binance":
		*n = ExchangeName(s)
		return nil

	}

	return fmt.Errorf("unknown or unsupported exchange name: %s, valid names are: kraken, max, binance", s)
}

func (n ExchangeName) String() string {
	return string(n)
}

const (
	ExchangeKraken  = ExchangeName("kraken")
	ExchangeMax     = ExchangeName("max")
	ExchangeBinance = ExchangeName("binance")
)

var SupportedExchanges = []ExchangeName{ExchangeKraken}

func ValidExchangeName(a string) (ExchangeName, error) {
	switch strings.ToLower(a) {
	case "kraken":
		return ExchangeKraken, nil
	case "max":
		return ExchangeMax, nil
	case "binance", "bn":
		return ExchangeBinance, nil
	}

	return "", fmt.Errorf("invalid exchange name: %s", a)
}
