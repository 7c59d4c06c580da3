// Package repository is the PostgreSQL credential store. API credentials are
// encrypted before they touch the database and decrypted on the way out, so
// everything past this boundary works with plaintext Accounts.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cryptovision/internal/domain/entity"
	"cryptovision/internal/pkg/crypto"
)

// ErrNotFound indicates the requested account does not exist or is not owned
// by the caller.
var ErrNotFound = errors.New("account not found")

// AccountRepository stores users and their exchange accounts.
type AccountRepository struct {
	pool   *pgxpool.Pool
	key    []byte
	logger *zap.Logger
}

// NewAccountRepository creates the repository. encryptionKey must be a valid
// AES-256 key; construction fails otherwise so a misconfigured key is caught
// at startup, not on the first write.
func NewAccountRepository(pool *pgxpool.Pool, encryptionKey []byte, logger *zap.Logger) (*AccountRepository, error) {
	if err := crypto.ValidateKey(encryptionKey); err != nil {
		return nil, err
	}
	return &AccountRepository{
		pool:   pool,
		key:    encryptionKey,
		logger: logger.Named("AccountRepository"),
	}, nil
}

// EnsureUser creates the user row if it does not exist yet.
func (r *AccountRepository) EnsureUser(ctx context.Context, userID int64, username string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username) VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING`, userID, username)
	if err != nil {
		return fmt.Errorf("ensuring user %d: %w", userID, err)
	}
	return nil
}

// ListAccounts returns the owner's accounts in insertion order, credentials
// decrypted.
func (r *AccountRepository) ListAccounts(ctx context.Context, ownerID int64) ([]entity.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, exchange_name, api_key, api_secret, COALESCE(api_passphrase, ''), is_demo
		 FROM exchange_accounts
		 WHERE owner_id = $1
		 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []entity.Account
	for rows.Next() {
		var acc entity.Account
		var encKey, encSecret, encPass string
		if err := rows.Scan(&acc.ID, &acc.OwnerID, &acc.Exchange, &encKey, &encSecret, &encPass, &acc.Demo); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		if acc.APIKey, err = crypto.Decrypt(encKey, r.key); err != nil {
			return nil, fmt.Errorf("decrypting api key for account %d: %w", acc.ID, err)
		}
		if acc.APISecret, err = crypto.Decrypt(encSecret, r.key); err != nil {
			return nil, fmt.Errorf("decrypting api secret for account %d: %w", acc.ID, err)
		}
		if encPass != "" {
			if acc.Passphrase, err = crypto.Decrypt(encPass, r.key); err != nil {
				return nil, fmt.Errorf("decrypting passphrase for account %d: %w", acc.ID, err)
			}
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return accounts, nil
}

// AddAccount encrypts the credentials and inserts the account.
func (r *AccountRepository) AddAccount(ctx context.Context, acc entity.Account) error {
	encKey, err := crypto.Encrypt(acc.APIKey, r.key)
	if err != nil {
		return fmt.Errorf("encrypting api key: %w", err)
	}
	encSecret, err := crypto.Encrypt(acc.APISecret, r.key)
	if err != nil {
		return fmt.Errorf("encrypting api secret: %w", err)
	}
	var encPass *string
	if acc.Passphrase != "" {
		p, err := crypto.Encrypt(acc.Passphrase, r.key)
		if err != nil {
			return fmt.Errorf("encrypting passphrase: %w", err)
		}
		encPass = &p
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO exchange_accounts (owner_id, exchange_name, api_key, api_secret, api_passphrase, is_demo)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		acc.OwnerID, acc.Exchange, encKey, encSecret, encPass, acc.Demo)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	r.logger.Info("exchange account added",
		zap.Int64("owner_id", acc.OwnerID), zap.String("exchange", acc.Exchange), zap.Bool("demo", acc.Demo))
	return nil
}

// DeleteAccount removes one account; ErrNotFound when the id does not belong
// to the owner.
func (r *AccountRepository) DeleteAccount(ctx context.Context, accountID, ownerID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM exchange_accounts WHERE id = $1 AND owner_id = $2`, accountID, ownerID)
	if err != nil {
		return fmt.Errorf("deleting account %d: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllUserData removes the user and, via cascade, all linked accounts.
func (r *AccountRepository) DeleteAllUserData(ctx context.Context, ownerID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, ownerID); err != nil {
		return fmt.Errorf("deleting user data for %d: %w", ownerID, err)
	}
	r.logger.Info("all user data deleted", zap.Int64("owner_id", ownerID))
	return nil
}
