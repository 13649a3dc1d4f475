package types

// FailureKind is the closed classification of a signed exchange call
// outcome. Exchange adapters map raw HTTP responses onto these kinds; the
// call executor decides the retry policy from the kind alone, so adding a
// kind here means deciding its policy there.
type FailureKind string

const (
	// FailureNone marks a successful call.
	FailureNone = FailureKind("")

	// FailureInvalidNonce means the exchange rejected the request nonce.
	FailureInvalidNonce = FailureKind("invalid_nonce")

	// FailureRateLimited covers HTTP 429 and exchange-level rate limit
	// rejections.
	FailureRateLimited = FailureKind("rate_limited")

	// FailureCredentialInvalid covers bad API keys and bad signatures.
	FailureCredentialInvalid = FailureKind("credential_invalid")

	// FailurePermissionDenied means the credential lacks the permission for
	// the endpoint.
	FailurePermissionDenied = FailureKind("permission_denied")

	// FailureClientError covers the remaining non-retryable client-side
	// rejections, e.g. malformed arguments or business errors.
	FailureClientError = FailureKind("client_error")

	// FailureServerError covers HTTP 5xx and exchange-internal errors.
	FailureServerError = FailureKind("server_error")

	// FailureNetwork covers transport failures where no response arrived.
	FailureNetwork = FailureKind("network")
)

func (k FailureKind) String() string {
	if k == FailureNone {
		return "none"
	}

	return string(k)
}
