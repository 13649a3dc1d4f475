package krakenapi

import (
	"context"
	"time"
)

type ServerTimeResult struct {
	UnixTime int64  `json:"unixtime"`
	Rfc1123  string `json:"rfc1123"`
}

// ServerTime reads the public time endpoint. Kraken reports seconds, so the
// value carries up to one second of truncation, which the caller's margins
// absorb.
func (c *RestClient) ServerTime(ctx context.Context) (time.Time, error) {
	if err := publicRateLimiter.Wait(ctx); err != nil {
		return time.Time{}, err
	}

	req, err := c.NewRequest(ctx, "GET", "/0/public/Time", nil, nil)
	if err != nil {
		return time.Time{}, err
	}

	resp, err := c.SendRequest(req)
	if err != nil {
		return time.Time{}, err
	}

	var apiResp APIResponse
	if err := resp.DecodeJSON(&apiResp); err != nil {
		return time.Time{}, err
	}

	if err := apiResp.Err(); err != nil {
		return time.Time{}, err
	}

	var result ServerTimeResult
	if err := apiResp.DecodeResult(&result); err != nil {
		return time.Time{}, err
	}

	return time.Unix(result.UnixTime, 0), nil
}
