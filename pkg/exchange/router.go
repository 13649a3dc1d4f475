package exchange

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/c9s/exnonce/pkg/exchange/kraken/krakenapi"
	"github.com/c9s/exnonce/pkg/service"
	"github.com/c9s/exnonce/pkg/types"
	"github.com/c9s/exnonce/pkg/util"
)

// SessionFactory builds a live session from a stored credential.
type SessionFactory func(credential *service.Credential) (*Session, error)

// Router hands out one session per user and exchange. Credentials are
// resolved through the provider on first use and the session is cached, so
// repeated calls for the same user reuse the same client, rate limiter and
// nonce key.
type Router struct {
	credentials service.CredentialProvider

	mu        sync.Mutex
	sessions  map[string]*Session
	factories map[types.ExchangeName]SessionFactory
}

func NewRouter(credentials service.CredentialProvider) *Router {
	return &Router{
		credentials: credentials,
		sessions:    make(map[string]*Session),
		factories: map[types.ExchangeName]SessionFactory{
			types.ExchangeKraken: NewKrakenSession,
		},
	}
}

// RegisterFactory installs or replaces the session factory for an exchange.
func (r *Router) RegisterFactory(exchange types.ExchangeName, factory SessionFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[exchange] = factory
}

func sessionSlot(userID string, exchange types.ExchangeName) string {
	return userID + "/" + exchange.String()
}

// Route returns the session for a user on an exchange, building it on first
// use. Concurrent first calls may both build a session; the cache keeps one
// and both callers end up sharing it.
func (r *Router) Route(ctx context.Context, userID string, exchange types.ExchangeName) (*Session, error) {
	slot := sessionSlot(userID, exchange)

	r.mu.Lock()
	if session, ok := r.sessions[slot]; ok {
		r.mu.Unlock()
		return session, nil
	}
	factory, ok := r.factories[exchange]
	r.mu.Unlock()

	if !ok {
		return nil, errors.Errorf("exchange %s is not supported", exchange)
	}

	credential, err := r.credentials.QueryCredential(ctx, userID, exchange)
	if err != nil {
		return nil, errors.Wrapf(err, "can not route user %s to %s", userID, exchange)
	}

	session, err := factory(credential)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[slot]; ok {
		return existing, nil
	}

	r.sessions[slot] = session

	log.Infof("routed user %s to %s with nonce key %s", userID, exchange, session.NonceKey)
	return session, nil
}

// Invalidate drops the cached session so the next Route reloads the
// credential, for example after the user rotates an API key.
func (r *Router) Invalidate(userID string, exchange types.ExchangeName) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionSlot(userID, exchange))
}

// NewKrakenSession wires a kraken REST client for the credential.
func NewKrakenSession(credential *service.Credential) (*Session, error) {
	if credential.APIKey == "" || credential.APISecret == "" {
		return nil, errors.New("kraken credential is missing the api key or secret")
	}

	log.Debugf("creating kraken session for user %s, key = %s", credential.UserID, util.MaskKey(credential.APIKey))

	client := krakenapi.NewClient()
	client.Auth(credential.APIKey, credential.APISecret)

	return &Session{
		UserID:   credential.UserID,
		Exchange: types.ExchangeKraken,
		NonceKey: types.NewNonceKey(types.ExchangeKraken, credential.APIKey),
		Client:   client,
		Classify: krakenapi.ClassifyResponse,
		Limiter:  krakenapi.NewPrivateRateLimiter(),
	}, nil
}
