package token

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"custodyvault/internal/model"
)

type ledgerSnapshot struct {
	Accounts  []model.Account `json:"accounts"`
	UpdatedAt string          `json:"updated_at"`
}

// LoadFile restores a ledger from a JSON snapshot. A missing file yields
// an empty ledger.
func LoadFile(path string) (*Ledger, error) {
	ledger := NewLedger()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledger, nil
		}
		return nil, fmt.Errorf("read accounts: %w", err)
	}

	var snap ledgerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse accounts: %w", err)
	}
	for _, account := range snap.Accounts {
		ledger.accounts[account.Address] = account
	}
	return ledger, nil
}

// SaveFile writes the ledger to a JSON snapshot via tmp+rename.
func (l *Ledger) SaveFile(path string) error {
	l.mu.Lock()
	accounts := make([]model.Account, 0, len(l.accounts))
	for _, account := range l.accounts {
		accounts = append(accounts, account)
	}
	l.mu.Unlock()

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create accounts dir: %w", err)
		}
	}

	snap := ledgerSnapshot{
		Accounts:  accounts,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write accounts tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename accounts: %w", err)
	}
	return nil
}
