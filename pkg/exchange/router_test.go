package exchange

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c9s/exnonce/pkg/exchange/kraken/krakenapi"
	"github.com/c9s/exnonce/pkg/service"
	"github.com/c9s/exnonce/pkg/types"
)

func newTestProvider() *service.StaticCredentialService {
	p := service.NewStaticCredentialService()
	p.Add(&service.Credential{
		UserID:    "u1",
		Exchange:  types.ExchangeKraken,
		APIKey:    "key-1",
		APISecret: "c2VjcmV0LTE=",
	})
	return p
}

func TestRouterRoutesAndCaches(t *testing.T) {
	ctx := context.Background()
	r := NewRouter(newTestProvider())

	s1, err := r.Route(ctx, "u1", types.ExchangeKraken)
	require.NoError(t, err)
	assert.Equal(t, "u1", s1.UserID)
	assert.Equal(t, types.NewNonceKey(types.ExchangeKraken, "key-1"), s1.NonceKey)
	assert.NotNil(t, s1.Client)
	assert.NotNil(t, s1.Classify)
	assert.NotNil(t, s1.Limiter)

	s2, err := r.Route(ctx, "u1", types.ExchangeKraken)
	require.NoError(t, err)
	assert.Same(t, s1, s2, "repeated routes should share one session")
}

func TestRouterUnknownUser(t *testing.T) {
	r := NewRouter(newTestProvider())

	_, err := r.Route(context.Background(), "ghost", types.ExchangeKraken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrCredentialNotFound))
}

func TestRouterUnsupportedExchange(t *testing.T) {
	r := NewRouter(newTestProvider())

	_, err := r.Route(context.Background(), "u1", types.ExchangeMax)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestRouterRegisterFactory(t *testing.T) {
	p := newTestProvider()
	p.Add(&service.Credential{
		UserID:    "u1",
		Exchange:  types.ExchangeMax,
		APIKey:    "max-key",
		APISecret: "max-secret",
	})

	r := NewRouter(p)
	r.RegisterFactory(types.ExchangeMax, func(credential *service.Credential) (*Session, error) {
		return &Session{
			UserID:   credential.UserID,
			Exchange: types.ExchangeMax,
			NonceKey: types.NewNonceKey(types.ExchangeMax, credential.APIKey),
		}, nil
	})

	s, err := r.Route(context.Background(), "u1", types.ExchangeMax)
	require.NoError(t, err)
	assert.Equal(t, types.ExchangeMax, s.Exchange)
}

func TestRouterInvalidate(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider()
	r := NewRouter(p)

	s1, err := r.Route(ctx, "u1", types.ExchangeKraken)
	require.NoError(t, err)

	// rotate the key, drop the cached session
	p.Add(&service.Credential{
		UserID:    "u1",
		Exchange:  types.ExchangeKraken,
		APIKey:    "key-2",
		APISecret: "c2VjcmV0LTI=",
	})
	r.Invalidate("u1", types.ExchangeKraken)

	s2, err := r.Route(ctx, "u1", types.ExchangeKraken)
	require.NoError(t, err)
	assert.NotEqual(t, s1.NonceKey, s2.NonceKey, "a rotated key maps to a new nonce key")
}

func TestNewKrakenSession(t *testing.T) {
	s, err := NewKrakenSession(&service.Credential{
		UserID:    "u1",
		Exchange:  types.ExchangeKraken,
		APIKey:    "key-1",
		APISecret: "c2VjcmV0LTE=",
	})
	require.NoError(t, err)

	_, ok := s.Client.(*krakenapi.RestClient)
	assert.True(t, ok)
	assert.Equal(t, "kraken:"+types.CredentialFingerprint("key-1"), s.NonceKey.String())
}

func TestNewKrakenSessionRequiresSecret(t *testing.T) {
	_, err := NewKrakenSession(&service.Credential{
		UserID:   "u1",
		Exchange: types.ExchangeKraken,
		APIKey:   "key-1",
	})
	assert.Error(t, err)
}
