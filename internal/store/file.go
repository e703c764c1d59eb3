package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"custodyvault/internal/model"
)

// FileStore keeps all vault and position records in a single JSON
// snapshot, rewritten atomically on every mutation. Suitable for the CLI
// and small deployments without Postgres.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileSnapshot struct {
	Vaults    map[string]model.Vault               `json:"vaults"`
	Positions map[string]map[string]model.Position `json:"positions"`
	UpdatedAt string                               `json:"updated_at"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (fileSnapshot, error) {
	snap := fileSnapshot{
		Vaults:    make(map[string]model.Vault),
		Positions: make(map[string]map[string]model.Position),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return snap, fmt.Errorf("read store: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse store: %w", err)
	}
	if snap.Vaults == nil {
		snap.Vaults = make(map[string]model.Vault)
	}
	if snap.Positions == nil {
		snap.Positions = make(map[string]map[string]model.Position)
	}
	return snap, nil
}

func (s *FileStore) save(snap fileSnapshot) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	snap.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}

func (s *FileStore) CreateVault(ctx context.Context, vault model.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return err
	}
	key := vault.Key().Hex()
	if _, ok := snap.Vaults[key]; ok {
		return ErrVaultExists
	}
	snap.Vaults[key] = vault
	return s.save(snap)
}

func (s *FileStore) GetVault(ctx context.Context, key common.Hash) (model.Vault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return model.Vault{}, err
	}
	vault, ok := snap.Vaults[key.Hex()]
	if !ok {
		return model.Vault{}, ErrVaultNotFound
	}
	return vault, nil
}

func (s *FileStore) PutVault(ctx context.Context, vault model.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return err
	}
	key := vault.Key().Hex()
	if _, ok := snap.Vaults[key]; !ok {
		return ErrVaultNotFound
	}
	snap.Vaults[key] = vault
	return s.save(snap)
}

func (s *FileStore) GetPosition(ctx context.Context, key common.Hash, owner common.Address) (model.Position, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return model.Position{}, false, err
	}
	byOwner, ok := snap.Positions[key.Hex()]
	if !ok {
		return model.Position{}, false, nil
	}
	position, ok := byOwner[owner.Hex()]
	return position, ok, nil
}

func (s *FileStore) PutPosition(ctx context.Context, key common.Hash, position model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return err
	}
	byOwner, ok := snap.Positions[key.Hex()]
	if !ok {
		byOwner = make(map[string]model.Position)
		snap.Positions[key.Hex()] = byOwner
	}
	byOwner[position.Owner.Hex()] = position
	return s.save(snap)
}

// Apply writes the vault and the position in one snapshot rewrite, so a
// failed save leaves neither record behind.
func (s *FileStore) Apply(ctx context.Context, vault model.Vault, position model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return err
	}
	key := vault.Key().Hex()
	if _, ok := snap.Vaults[key]; !ok {
		return ErrVaultNotFound
	}
	snap.Vaults[key] = vault

	byOwner, ok := snap.Positions[key]
	if !ok {
		byOwner = make(map[string]model.Position)
		snap.Positions[key] = byOwner
	}
	byOwner[position.Owner.Hex()] = position
	return s.save(snap)
}
