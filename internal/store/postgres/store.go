package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"custodyvault/internal/model"
	"custodyvault/internal/store"
)

// Store provides Postgres persistence for vault and position records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the vaults and positions tables if absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS vaults (
			vault_key        TEXT PRIMARY KEY,
			administrator    TEXT NOT NULL,
			asset_id         TEXT NOT NULL,
			custody_account  TEXT NOT NULL,
			total_assets     NUMERIC(20,0) NOT NULL,
			total_shares     NUMERIC(20,0) NOT NULL,
			paused           BOOLEAN NOT NULL,
			derivation_nonce NUMERIC(20,0) NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS positions (
			vault_key  TEXT NOT NULL,
			owner      TEXT NOT NULL,
			shares     NUMERIC(20,0) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (vault_key, owner)
		);
	`)
	return err
}

func (s *Store) CreateVault(ctx context.Context, vault model.Vault) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO vaults (
			vault_key, administrator, asset_id, custody_account,
			total_assets, total_shares, paused, derivation_nonce, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (vault_key) DO NOTHING
	`,
		vault.Key().Hex(),
		vault.Administrator.Hex(),
		vault.AssetID.Hex(),
		vault.CustodyAccount.Hex(),
		vault.TotalAssets,
		vault.TotalShares,
		vault.Paused,
		vault.DerivationNonce,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrVaultExists
	}
	return nil
}

func (s *Store) GetVault(ctx context.Context, key common.Hash) (model.Vault, error) {
	var vault model.Vault
	var administrator, asset, custody string
	var totalAssets, totalShares, nonce uint64
	row := s.pool.QueryRow(ctx, `
		SELECT administrator, asset_id, custody_account,
		       total_assets, total_shares, paused, derivation_nonce
		FROM vaults WHERE vault_key = $1
	`, key.Hex())
	if err := row.Scan(&administrator, &asset, &custody, &totalAssets, &totalShares, &vault.Paused, &nonce); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Vault{}, store.ErrVaultNotFound
		}
		return model.Vault{}, err
	}

	vault.Administrator = common.HexToAddress(administrator)
	vault.AssetID = common.HexToAddress(asset)
	vault.CustodyAccount = common.HexToAddress(custody)
	vault.TotalAssets = totalAssets
	vault.TotalShares = totalShares
	vault.DerivationNonce = nonce
	return vault, nil
}

func (s *Store) PutVault(ctx context.Context, vault model.Vault) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE vaults SET
			total_assets = $2,
			total_shares = $3,
			paused = $4,
			updated_at = now()
		WHERE vault_key = $1
	`,
		vault.Key().Hex(),
		vault.TotalAssets,
		vault.TotalShares,
		vault.Paused,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrVaultNotFound
	}
	return nil
}

func (s *Store) GetPosition(ctx context.Context, key common.Hash, owner common.Address) (model.Position, bool, error) {
	var shares uint64
	row := s.pool.QueryRow(ctx, `
		SELECT shares FROM positions WHERE vault_key = $1 AND owner = $2
	`, key.Hex(), owner.Hex())
	if err := row.Scan(&shares); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Position{}, false, nil
		}
		return model.Position{}, false, err
	}
	return model.Position{Owner: owner, Shares: shares}, true, nil
}

func (s *Store) PutPosition(ctx context.Context, key common.Hash, position model.Position) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO positions (vault_key, owner, shares, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (vault_key, owner)
		DO UPDATE SET shares = EXCLUDED.shares, updated_at = now()
	`, key.Hex(), position.Owner.Hex(), position.Shares)
	return err
}

// Apply updates the vault and upserts the position inside one transaction.
func (s *Store) Apply(ctx context.Context, vault model.Vault, position model.Position) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	key := vault.Key().Hex()
	tag, err := tx.Exec(ctx, `
		UPDATE vaults SET
			total_assets = $2,
			total_shares = $3,
			paused = $4,
			updated_at = now()
		WHERE vault_key = $1
	`, key, vault.TotalAssets, vault.TotalShares, vault.Paused)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrVaultNotFound
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO positions (vault_key, owner, shares, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (vault_key, owner)
		DO UPDATE SET shares = EXCLUDED.shares, updated_at = now()
	`, key, position.Owner.Hex(), position.Shares); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
