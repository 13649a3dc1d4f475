package exchange

import (
	"context"
	"net/http"
	"net/url"

	"github.com/c9s/requestgen"
	"golang.org/x/time/rate"

	"github.com/c9s/exnonce/pkg/types"
)

// SignedClient builds and sends authenticated requests for one exchange
// credential. The nonce is injected by the caller so that every attempt can
// carry a fresh value.
type SignedClient interface {
	NewSignedRequest(ctx context.Context, refURL string, params url.Values, nonce int64) (*http.Request, error)
	SendRequest(req *http.Request) (*requestgen.Response, error)
}

// ResponseClassifier maps a raw call outcome onto the closed failure
// taxonomy. Each exchange client package ships its own classifier; this is
// the only layer allowed to look at raw exchange error strings.
type ResponseClassifier func(resp *requestgen.Response, err error) types.FailureKind

// Session binds one credential on one exchange: the signed client, the
// response classifier, the per-credential rate limiter and the nonce key
// whose sequence every call through this session draws from.
type Session struct {
	UserID   string
	Exchange types.ExchangeName
	NonceKey types.NonceKey

	Client   SignedClient
	Classify ResponseClassifier
	Limiter  *rate.Limiter
}
