package service

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/c9s/exnonce/pkg/types"
)

// DatabaseCredentialService loads credentials from the platform's
// exchange_credentials table. API secrets are stored encrypted; a
// SecretCipher must be provided to read them back.
type DatabaseCredentialService struct {
	DB     *sqlx.DB
	cipher *SecretCipher
}

func NewDatabaseCredentialService(db *sqlx.DB, cipher *SecretCipher) *DatabaseCredentialService {
	return &DatabaseCredentialService{
		DB:     db,
		cipher: cipher,
	}
}

type credentialRecord struct {
	UserID    string `db:"user_id"`
	Exchange  string `db:"exchange"`
	APIKey    string `db:"api_key"`
	APISecret string `db:"api_secret"`

	// passphrase is empty for exchanges that do not use one
	Passphrase string `db:"passphrase"`
}

func (s *DatabaseCredentialService) QueryCredential(ctx context.Context, userID string, exchange types.ExchangeName) (*Credential, error) {
	sel := sq.Select("user_id", "exchange", "api_key", "api_secret", "passphrase").
		From("exchange_credentials").
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.Eq{"exchange": exchange},
		}).
		Limit(1)

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	log.Debug(sql)

	rows, err := s.DB.QueryxContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	if !rows.Next() {
		return nil, errors.Wrapf(ErrCredentialNotFound, "user %s has no credential on %s", userID, exchange)
	}

	var record credentialRecord
	if err := rows.StructScan(&record); err != nil {
		return nil, err
	}

	secret := record.APISecret
	if s.cipher != nil {
		secret, err = s.cipher.Decrypt(record.APISecret)
		if err != nil {
			return nil, errors.Wrapf(err, "can not decrypt api secret for user %s on %s", userID, exchange)
		}
	}

	return &Credential{
		UserID:     record.UserID,
		Exchange:   types.ExchangeName(record.Exchange),
		APIKey:     record.APIKey,
		APISecret:  secret,
		Passphrase: record.Passphrase,
	}, nil
}
