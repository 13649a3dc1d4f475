package krakenapi

import "github.com/c9s/requestgen"

// BalanceMap holds asset balances as decimal strings, keyed by kraken asset
// code, e.g. "ZUSD" or "XXBT".
type BalanceMap map[string]string

// ParseBalances decodes an account balance response body.
func ParseBalances(resp *requestgen.Response) (BalanceMap, error) {
	var apiResp APIResponse
	if err := resp.DecodeJSON(&apiResp); err != nil {
		return nil, err
	}

	if err := apiResp.Err(); err != nil {
		return nil, err
	}

	var balances BalanceMap
	if err := apiResp.DecodeResult(&balances); err != nil {
		return nil, err
	}

	return balances, nil
}
