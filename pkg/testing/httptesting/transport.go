package httptesting

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

type RoundTripFunc func(req *http.Request) (*http.Response, error)

// MockTransport dispatches requests to handlers registered by method and
// path. Unregistered routes fail the round trip, which keeps tests honest
// about every request they send.
type MockTransport struct {
	handlers map[string]RoundTripFunc
}

func (transport *MockTransport) Handle(method, path string, f RoundTripFunc) {
	if transport.handlers == nil {
		transport.handlers = make(map[string]RoundTripFunc)
	}

	transport.handlers[method+" "+path] = f
}

func (transport *MockTransport) GET(path string, f RoundTripFunc) {
	transport.Handle(http.MethodGet, path, f)
}

func (transport *MockTransport) POST(path string, f RoundTripFunc) {
	transport.Handle(http.MethodPost, path, f)
}

func (transport *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f, ok := transport.handlers[strings.ToUpper(req.Method)+" "+req.URL.Path]
	if !ok {
		return nil, errors.Errorf("roundtrip mock to %s %s is not defined", req.Method, req.URL.Path)
	}

	return f(req)
}

func MockWithJsonReply(url string, rawData interface{}) *http.Client {
	tripFunc := func(_ *http.Request) (*http.Response, error) {
		return BuildResponseJson(http.StatusOK, rawData), nil
	}

	transport := &MockTransport{}
	transport.GET(url, tripFunc)
	transport.POST(url, tripFunc)
	return &http.Client{Transport: transport}
}
