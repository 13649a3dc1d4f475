package httptesting

import (
	"encoding/json"
	"net/http"
)

// single-endpoint client: every request gets the same canned reply

type cannedTransport struct {
	// saveTo, when set, receives each outgoing request so the test can
	// inspect what was actually sent. RoundTrip has no way to return the
	// request, so the caller passes the address of a local variable.
	saveTo  **http.Request
	content string
	code    int
	err     error
}

func (tr *cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if tr.saveTo != nil {
		*tr.saveTo = req
	}

	code := tr.code
	if code == 0 {
		code = http.StatusOK
	}

	resp := BuildResponseString(code, tr.content)
	resp.Header.Set("Content-Type", "application/json")
	return resp, tr.err
}

func HttpClientWithStatus(code int, content string) *http.Client {
	return &http.Client{Transport: &cannedTransport{code: code, content: content}}
}

func HttpClientWithError(err error) *http.Client {
	return &http.Client{Transport: &cannedTransport{err: err}}
}

func HttpClientSaverWithJson(saved **http.Request, jsonData interface{}) *http.Client {
	jsonBytes, err := json.Marshal(jsonData)
	return &http.Client{Transport: &cannedTransport{saveTo: saved, err: err, content: string(jsonBytes)}}
}
