package krakenapi

import (
	"net/http"
	"testing"

	"github.com/c9s/requestgen"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/c9s/exnonce/pkg/types"
)

func buildResponse(statusCode int, body string) *requestgen.Response {
	return &requestgen.Response{
		Response: &http.Response{StatusCode: statusCode},
		Body:     []byte(body),
	}
}

// the exact strings kraken sends are pinned here: if kraken renames an
// error, these fixtures are where the new spelling lands
func TestClassifyResponseBodyErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind types.FailureKind
	}{
		{"invalid nonce", `{"error":["EAPI:Invalid nonce"],"result":{}}`, types.FailureInvalidNonce},
		{"api rate limit", `{"error":["EAPI:Rate limit exceeded"]}`, types.FailureRateLimited},
		{"order rate limit", `{"error":["EOrder:Rate limit exceeded"]}`, types.FailureRateLimited},
		{"temporary lockout", `{"error":["EGeneral:Temporary lockout"]}`, types.FailureRateLimited},
		{"invalid key", `{"error":["EAPI:Invalid key"]}`, types.FailureCredentialInvalid},
		{"invalid signature", `{"error":["EAPI:Invalid signature"]}`, types.FailureCredentialInvalid},
		{"permission denied", `{"error":["EGeneral:Permission denied"]}`, types.FailurePermissionDenied},
		{"service unavailable", `{"error":["EService:Unavailable"]}`, types.FailureServerError},
		{"service busy", `{"error":["EService:Busy"]}`, types.FailureServerError},
		{"internal error", `{"error":["EGeneral:Internal error"]}`, types.FailureServerError},
		{"business rejection", `{"error":["EOrder:Insufficient funds"]}`, types.FailureClientError},
		{"unknown error class", `{"error":["EFunding:Unknown withdraw key"]}`, types.FailureClientError},
		{"success", `{"error":[],"result":{"unixtime":1616336594}}`, types.FailureNone},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// kraken sends these under HTTP 200
			kind := ClassifyResponse(buildResponse(http.StatusOK, c.body), nil)
			assert.Equal(t, c.kind, kind)
		})
	}
}

func TestClassifyResponseHTTPStatus(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		body       string
		kind       types.FailureKind
	}{
		{"too many requests", http.StatusTooManyRequests, "slow down", types.FailureRateLimited},
		{"unauthorized", http.StatusUnauthorized, "", types.FailureCredentialInvalid},
		{"forbidden", http.StatusForbidden, "", types.FailurePermissionDenied},
		{"internal server error", http.StatusInternalServerError, "<html>boom</html>", types.FailureServerError},
		{"bad gateway", http.StatusBadGateway, "", types.FailureServerError},
		{"service unavailable", http.StatusServiceUnavailable, "", types.FailureServerError},
		{"plain bad request", http.StatusBadRequest, "bad request", types.FailureClientError},
		{"kraken shaped bad request", http.StatusBadRequest, `{"error":["EAPI:Invalid nonce"]}`, types.FailureInvalidNonce},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			kind := ClassifyResponse(buildResponse(c.statusCode, c.body), errors.New("http error"))
			assert.Equal(t, c.kind, kind)
		})
	}
}

func TestClassifyResponseStatusBeatsBody(t *testing.T) {
	// a 5xx with a kraken error body still counts as a server error: the
	// body cannot be trusted mid-outage
	resp := buildResponse(http.StatusInternalServerError, `{"error":["EAPI:Invalid nonce"]}`)
	assert.Equal(t, types.FailureServerError, ClassifyResponse(resp, errors.New("http error")))
}

func TestClassifyResponseTransportError(t *testing.T) {
	assert.Equal(t, types.FailureNetwork, ClassifyResponse(nil, errors.New("dial tcp: connection refused")))
}

func TestAPIResponseErr(t *testing.T) {
	var resp APIResponse
	assert.NoError(t, resp.Err())

	resp.Error = []string{"EAPI:Invalid nonce", "EService:Busy"}
	err := resp.Err()
	assert.Error(t, err)
	assert.Equal(t, "kraken api error: EAPI:Invalid nonce, EService:Busy", err.Error())

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Len(t, apiErr.Messages, 2)
}
