package types

import (
	"crypto/sha256"
	"encoding/hex"
)

// NonceKey identifies an independent, strictly increasing nonce sequence.
// Sequences are tracked per exchange credential: two API keys on the same
// exchange never share a counter.
type NonceKey struct {
	Exchange ExchangeName `json:"exchange"`
	Account  string       `json:"account"`
}

// NewNonceKey derives the nonce key for an API key. The account part is a
// credential fingerprint, raw API keys must not appear in store keys or logs.
func NewNonceKey(exchange ExchangeName, apiKey string) NonceKey {
	return NonceKey{
		Exchange: exchange,
		Account:  CredentialFingerprint(apiKey),
	}
}

func (k NonceKey) String() string {
	return k.Exchange.String() + ":" + k.Account
}

// CredentialFingerprint returns a short, stable, non-reversible identifier
// for an API key.
func CredentialFingerprint(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])[:12]
}
