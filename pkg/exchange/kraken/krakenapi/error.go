package krakenapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/c9s/requestgen"

	"github.com/c9s/exnonce/pkg/types"
)

// APIResponse is the envelope of every kraken REST response. Failed calls
// usually come back as HTTP 200 with entries in the error array.
type APIResponse struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

func (r *APIResponse) Err() error {
	if len(r.Error) == 0 {
		return nil
	}

	return &APIError{Messages: r.Error}
}

func (r *APIResponse) DecodeResult(o interface{}) error {
	return json.Unmarshal(r.Result, o)
}

type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	return "kraken api error: " + strings.Join(e.Messages, ", ")
}

// errorClassTable maps kraken error strings onto failure kinds. This table
// and classifyMessages are the only place raw error strings are matched;
// everything downstream works on types.FailureKind.
// https://docs.kraken.com/api/docs/guides/global-intro#errors
var errorClassTable = []struct {
	substr string
	kind   types.FailureKind
}{
	{"EAPI:Invalid nonce", types.FailureInvalidNonce},
	{"EAPI:Rate limit exceeded", types.FailureRateLimited},
	{"EOrder:Rate limit exceeded", types.FailureRateLimited},
	{"EGeneral:Temporary lockout", types.FailureRateLimited},
	{"EAPI:Invalid key", types.FailureCredentialInvalid},
	{"EAPI:Invalid signature", types.FailureCredentialInvalid},
	{"EGeneral:Permission denied", types.FailurePermissionDenied},
	{"EService:Unavailable", types.FailureServerError},
	{"EService:Busy", types.FailureServerError},
	{"EGeneral:Internal error", types.FailureServerError},
}

func classifyMessages(msgs []string) types.FailureKind {
	for _, msg := range msgs {
		for _, entry := range errorClassTable {
			if strings.Contains(msg, entry.substr) {
				return entry.kind
			}
		}
	}

	// an unrecognized exchange rejection is not retried blindly
	return types.FailureClientError
}

// ClassifyResponse maps a call outcome onto a failure kind. HTTP status
// classes are checked first, then the kraken error array, which can arrive
// under HTTP 200.
func ClassifyResponse(resp *requestgen.Response, err error) types.FailureKind {
	if resp == nil {
		if err != nil {
			return types.FailureNetwork
		}

		return types.FailureNone
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return types.FailureRateLimited

	case resp.StatusCode == http.StatusUnauthorized:
		return types.FailureCredentialInvalid

	case resp.StatusCode == http.StatusForbidden:
		return types.FailurePermissionDenied

	case resp.StatusCode >= 500:
		return types.FailureServerError
	}

	var apiResp APIResponse
	if jsonErr := json.Unmarshal(resp.Body, &apiResp); jsonErr == nil && len(apiResp.Error) > 0 {
		return classifyMessages(apiResp.Error)
	}

	if resp.IsError() {
		return types.FailureClientError
	}

	return types.FailureNone
}
