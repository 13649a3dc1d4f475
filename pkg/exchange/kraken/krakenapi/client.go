package krakenapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/c9s/requestgen"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/c9s/exnonce/pkg/version"
)

const defaultHTTPTimeout = time.Second * 15
const RestBaseURL = "https://api.kraken.com"

var UserAgent = "exnonce/" + version.Version

var (
	// publicRateLimiter guards the public endpoints, which share one
	// counter per source IP. https://docs.kraken.com/api/docs/guides/spot-ratelimits
	publicRateLimiter = rate.NewLimiter(rate.Every(time.Second), 2)
)

// NewPrivateRateLimiter paces private calls for one credential. Kraken
// decays the per-account call counter at roughly 0.33/s for the starter
// tier, so sustained traffic has to stay near that.
// https://docs.kraken.com/api/docs/guides/spot-ratelimits
func NewPrivateRateLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(500*time.Millisecond), 3)
}

type RestClient struct {
	requestgen.BaseAPIClient

	Key, Secret string
}

func NewClient() *RestClient {
	u, err := url.Parse(RestBaseURL)
	if err != nil {
		panic(err)
	}

	return &RestClient{
		BaseAPIClient: requestgen.BaseAPIClient{
			BaseURL: u,
			HttpClient: &http.Client{
				Timeout: defaultHTTPTimeout,
			},
		},
	}
}

func (c *RestClient) Auth(key, secret string) {
	c.Key = key
	// pragma: allowlist nextline secret
	c.Secret = secret
}

// NewSignedRequest builds an authenticated POST for a private endpoint. The
// nonce is supplied by the caller: nonces are single-use, so every attempt
// needs a freshly issued value and a fresh request.
func (c *RestClient) NewSignedRequest(ctx context.Context, refURL string, params url.Values, nonce int64) (*http.Request, error) {
	if len(c.Key) == 0 {
		return nil, errors.New("empty api key")
	}

	if len(c.Secret) == 0 {
		return nil, errors.New("empty api secret")
	}

	rel, err := url.Parse(refURL)
	if err != nil {
		return nil, err
	}

	pathURL := c.BaseURL.ResolveReference(rel)

	// leave the caller's params untouched, requests may share them
	vals := url.Values{}
	for k, vs := range params {
		vals[k] = vs
	}

	nonceStr := strconv.FormatInt(nonce, 10)
	vals.Set("nonce", nonceStr)
	payload := vals.Encode()

	sig, err := c.sign(pathURL.Path, nonceStr, payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pathURL.String(), strings.NewReader(payload))
	if err != nil {
		return nil, err
	}

	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("User-Agent", UserAgent)
	req.Header.Add("API-Key", c.Key)
	req.Header.Add("API-Sign", sig)

	debugf("signed request: %s nonce=%s", pathURL.Path, nonceStr)
	return req, nil
}

// sign implements the kraken scheme: the secret is base64, the signature is
// HMAC-SHA512(secret, path + SHA256(nonce + payload)) in base64.
func (c *RestClient) sign(path, nonce, payload string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(c.Secret)
	if err != nil {
		return "", errors.Wrap(err, "kraken api secret must be base64")
	}

	sum := sha256.Sum256([]byte(nonce + payload))
	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(sum[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
