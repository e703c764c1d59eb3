package store

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"custodyvault/internal/model"
)

var (
	// ErrVaultExists is returned when initializing a vault whose key is
	// already present.
	ErrVaultExists = errors.New("vault already exists")
	// ErrVaultNotFound is returned for operations against an unknown vault.
	ErrVaultNotFound = errors.New("vault not found")
)

// Store persists Vault and Position records. Positions are keyed by
// (vault key, owner); a missing position reads as zero shares. Apply
// writes a vault together with one position as a single unit: either both
// records land or neither does.
type Store interface {
	CreateVault(ctx context.Context, vault model.Vault) error
	GetVault(ctx context.Context, key common.Hash) (model.Vault, error)
	PutVault(ctx context.Context, vault model.Vault) error

	GetPosition(ctx context.Context, key common.Hash, owner common.Address) (model.Position, bool, error)
	PutPosition(ctx context.Context, key common.Hash, position model.Position) error

	Apply(ctx context.Context, vault model.Vault, position model.Position) error
}

type positionKey struct {
	vault common.Hash
	owner common.Address
}

// MemoryStore is a map-backed Store. The engine assumes the host
// serializes operations per vault; the mutex here only guards the maps.
type MemoryStore struct {
	mu        sync.Mutex
	vaults    map[common.Hash]model.Vault
	positions map[positionKey]model.Position
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vaults:    make(map[common.Hash]model.Vault),
		positions: make(map[positionKey]model.Position),
	}
}

func (s *MemoryStore) CreateVault(ctx context.Context, vault model.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := vault.Key()
	if _, ok := s.vaults[key]; ok {
		return ErrVaultExists
	}
	s.vaults[key] = vault
	return nil
}

func (s *MemoryStore) GetVault(ctx context.Context, key common.Hash) (model.Vault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vault, ok := s.vaults[key]
	if !ok {
		return model.Vault{}, ErrVaultNotFound
	}
	return vault, nil
}

func (s *MemoryStore) PutVault(ctx context.Context, vault model.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := vault.Key()
	if _, ok := s.vaults[key]; !ok {
		return ErrVaultNotFound
	}
	s.vaults[key] = vault
	return nil
}

func (s *MemoryStore) GetPosition(ctx context.Context, key common.Hash, owner common.Address) (model.Position, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position, ok := s.positions[positionKey{vault: key, owner: owner}]
	return position, ok, nil
}

func (s *MemoryStore) PutPosition(ctx context.Context, key common.Hash, position model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.positions[positionKey{vault: key, owner: position.Owner}] = position
	return nil
}

func (s *MemoryStore) Apply(ctx context.Context, vault model.Vault, position model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := vault.Key()
	if _, ok := s.vaults[key]; !ok {
		return ErrVaultNotFound
	}
	s.vaults[key] = vault
	s.positions[positionKey{vault: key, owner: position.Owner}] = position
	return nil
}
