package krakenapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/exnonce/pkg/testing/httptesting"
	"github.com/c9s/exnonce/pkg/testutil"
)

func getTestClientOrSkip(t *testing.T) *RestClient {
	if b, _ := strconv.ParseBool(os.Getenv("CI")); b {
		t.Skip("skip test for CI")
	}

	key, secret, ok := testutil.IntegrationTestConfigured(t, "KRAKEN")
	if !ok {
		t.Skip("KRAKEN_* env vars are not configured")
		return nil
	}

	client := NewClient()
	client.Auth(key, secret)
	return client
}

// a syntactically valid base64 secret for signing tests
var testSecret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

func TestNewSignedRequest(t *testing.T) {
	ctx := context.Background()

	client := NewClient()
	client.Auth("test-api-key", testSecret)

	params := url.Values{}
	params.Set("pair", "XBTUSD")

	var nonce int64 = 1616492376594
	req, err := client.NewSignedRequest(ctx, "/0/private/Balance", params, nonce)
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "https://api.kraken.com/0/private/Balance", req.URL.String())
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Equal(t, "test-api-key", req.Header.Get("API-Key"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "nonce=1616492376594&pair=XBTUSD", string(body))

	// recompute the documented scheme from scratch:
	// base64(HMAC-SHA512(secret, path + SHA256(nonce + postdata)))
	secretBytes, err := base64.StdEncoding.DecodeString(testSecret)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(strconv.FormatInt(nonce, 10) + string(body)))
	mac := hmac.New(sha512.New, secretBytes)
	mac.Write([]byte("/0/private/Balance"))
	mac.Write(sum[:])
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, req.Header.Get("API-Sign"))

	// the caller's params must not pick up the nonce
	assert.Empty(t, params.Get("nonce"))
}

func TestNewSignedRequestRequiresAuth(t *testing.T) {
	ctx := context.Background()

	client := NewClient()
	_, err := client.NewSignedRequest(ctx, "/0/private/Balance", nil, 1)
	assert.Error(t, err)

	client.Auth("key", "")
	_, err = client.NewSignedRequest(ctx, "/0/private/Balance", nil, 1)
	assert.Error(t, err)

	client.Auth("key", "not-base64!!!")
	_, err = client.NewSignedRequest(ctx, "/0/private/Balance", nil, 1)
	assert.Error(t, err, "a non-base64 secret must be rejected before sending")
}

func TestServerTime(t *testing.T) {
	ctx := context.Background()

	client := NewClient()
	client.HttpClient = httptesting.MockWithJsonReply("/0/public/Time", map[string]interface{}{
		"error": []string{},
		"result": map[string]interface{}{
			"unixtime": 1616336594,
			"rfc1123":  "Sun, 21 Mar 21 14:23:14 +0000",
		},
	})

	st, err := client.ServerTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1616336594, 0), st)
}

func TestServerTimeErrorBody(t *testing.T) {
	ctx := context.Background()

	client := NewClient()
	client.HttpClient = httptesting.MockWithJsonReply("/0/public/Time", map[string]interface{}{
		"error": []string{"EService:Unavailable"},
	})

	_, err := client.ServerTime(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "EService:Unavailable")
}

func TestServerTimeHTTPError(t *testing.T) {
	client := NewClient()
	client.HttpClient = httptesting.HttpClientWithStatus(502, "bad gateway")

	_, err := client.ServerTime(context.Background())
	assert.Error(t, err)
}

func TestServerTimeTransportError(t *testing.T) {
	client := NewClient()
	client.HttpClient = httptesting.HttpClientWithError(errors.New("dial tcp: connection refused"))

	_, err := client.ServerTime(context.Background())
	assert.Error(t, err)
}

func TestParseBalances(t *testing.T) {
	resp := buildResponse(200, `{"error":[],"result":{"ZUSD":"1200.5000","XXBT":"0.0450000000"}}`)

	balances, err := ParseBalances(resp)
	require.NoError(t, err)
	assert.Equal(t, "1200.5000", balances["ZUSD"])
	assert.Equal(t, "0.0450000000", balances["XXBT"])
}

func TestSignedRequestRoundTrip(t *testing.T) {
	ctx := context.Background()

	client := NewClient()
	client.Auth("test-api-key", testSecret)

	var saved *http.Request
	client.HttpClient = httptesting.HttpClientSaverWithJson(&saved, map[string]interface{}{
		"error":  []string{},
		"result": map[string]interface{}{"ZUSD": "100.0000"},
	})

	req, err := client.NewSignedRequest(ctx, "/0/private/Balance", nil, 1616492376594)
	require.NoError(t, err)

	resp, err := client.SendRequest(req)
	require.NoError(t, err)

	balances, err := ParseBalances(resp)
	require.NoError(t, err)
	assert.Equal(t, "100.0000", balances["ZUSD"])

	// what actually left the client carries the auth headers
	require.NotNil(t, saved)
	assert.Equal(t, "/0/private/Balance", saved.URL.Path)
	assert.Equal(t, "test-api-key", saved.Header.Get("API-Key"))
	assert.NotEmpty(t, saved.Header.Get("API-Sign"))
}

func TestServerTime_Online(t *testing.T) {
	if b, _ := strconv.ParseBool(os.Getenv("CI")); b {
		t.Skip("skip test for CI")
	}

	if os.Getenv("TEST_KRAKEN") != "1" {
		t.Skip("TEST_KRAKEN is not set")
	}

	client := NewClient()
	st, err := client.ServerTime(context.Background())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), st, time.Minute)
}

func TestBalance_Online(t *testing.T) {
	client := getTestClientOrSkip(t)
	ctx := context.Background()

	req, err := client.NewSignedRequest(ctx, "/0/private/Balance", nil, time.Now().UnixMilli())
	require.NoError(t, err)

	resp, err := client.SendRequest(req)
	require.NoError(t, err)

	balances, err := ParseBalances(resp)
	require.NoError(t, err)
	t.Logf("balances: %+v", balances)
}
