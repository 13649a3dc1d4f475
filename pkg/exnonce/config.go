package exnonce

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/c9s/exnonce/pkg/store"
	"github.com/c9s/exnonce/pkg/types"
)

// NonceConfig tunes the generator margins and the shared counter TTL.
// RecoveryMargin must stay well above NormalMargin, it is the leap that
// clears a rejected sequence.
type NonceConfig struct {
	NormalMargin   types.Duration `json:"normalMargin,omitempty" yaml:"normalMargin,omitempty"`
	RecoveryMargin types.Duration `json:"recoveryMargin,omitempty" yaml:"recoveryMargin,omitempty"`
	CounterTTL     types.Duration `json:"counterTTL,omitempty" yaml:"counterTTL,omitempty"`
}

// ClockSyncConfig tunes how often exchange clocks are measured and how long
// measured offsets stay fresh.
type ClockSyncConfig struct {
	Interval types.Duration `json:"interval,omitempty" yaml:"interval,omitempty"`
	LocalTTL types.Duration `json:"localTTL,omitempty" yaml:"localTTL,omitempty"`
	StoreTTL types.Duration `json:"storeTTL,omitempty" yaml:"storeTTL,omitempty"`
}

// DatabaseConfig points at the platform database holding user credentials.
// The encryption key decrypts stored API secrets, either 32 raw bytes or
// base64 of 32 bytes.
type DatabaseConfig struct {
	DSN           string `json:"dsn" yaml:"dsn" env:"EXNONCE_DB_DSN"`
	EncryptionKey string `json:"encryptionKey,omitempty" yaml:"encryptionKey,omitempty" env:"EXNONCE_DB_ENCRYPTION_KEY"`
}

// CredentialConfig is an inline credential entry for setups without a
// database, e.g. a single-user deployment or a test bench.
type CredentialConfig struct {
	UserID     string             `json:"userID" yaml:"userID"`
	Exchange   types.ExchangeName `json:"exchange" yaml:"exchange"`
	APIKey     string             `json:"apiKey" yaml:"apiKey"`
	APISecret  string             `json:"apiSecret" yaml:"apiSecret"`
	Passphrase string             `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
}

type Config struct {
	Redis    *store.RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
	Database *DatabaseConfig    `json:"database,omitempty" yaml:"database,omitempty"`

	Exchanges   []types.ExchangeName `json:"exchanges,omitempty" yaml:"exchanges,omitempty"`
	Credentials []CredentialConfig   `json:"credentials,omitempty" yaml:"credentials,omitempty"`

	Nonce     NonceConfig     `json:"nonce,omitempty" yaml:"nonce,omitempty"`
	ClockSync ClockSyncConfig `json:"clockSync,omitempty" yaml:"clockSync,omitempty"`
}

func Load(configFile string) (*Config, error) {
	var config Config

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
