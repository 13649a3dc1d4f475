package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/c9s/exnonce/pkg/types"
)

var ErrCredentialNotFound = errors.New("credential not found")

// Credential is one user's API credential on one exchange. The secret and
// passphrase are held decrypted in memory only.
type Credential struct {
	UserID     string             `json:"userID" db:"user_id"`
	Exchange   types.ExchangeName `json:"exchange" db:"exchange"`
	APIKey     string             `json:"apiKey" db:"api_key"`
	APISecret  string             `json:"-" db:"api_secret"`
	Passphrase string             `json:"-" db:"passphrase"`
}

// CredentialProvider resolves the credential a user registered for an
// exchange. Implementations return ErrCredentialNotFound (possibly wrapped)
// when the user has no credential there.
type CredentialProvider interface {
	QueryCredential(ctx context.Context, userID string, exchange types.ExchangeName) (*Credential, error)
}

// StaticCredentialService serves credentials from an in-memory table,
// typically loaded from the config file.
type StaticCredentialService struct {
	mu          sync.RWMutex
	credentials map[string]*Credential
}

func NewStaticCredentialService() *StaticCredentialService {
	return &StaticCredentialService{
		credentials: make(map[string]*Credential),
	}
}

func credentialSlot(userID string, exchange types.ExchangeName) string {
	return userID + "/" + exchange.String()
}

func (s *StaticCredentialService) Add(credential *Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials[credentialSlot(credential.UserID, credential.Exchange)] = credential
}

func (s *StaticCredentialService) QueryCredential(ctx context.Context, userID string, exchange types.ExchangeName) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credential, ok := s.credentials[credentialSlot(userID, exchange)]
	if !ok {
		return nil, errors.Wrapf(ErrCredentialNotFound, "user %s has no credential on %s", userID, exchange)
	}

	return credential, nil
}
