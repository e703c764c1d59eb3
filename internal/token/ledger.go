package token

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"custodyvault/internal/model"
	"custodyvault/internal/safemath"
)

var (
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
	ErrAssetMismatch   = errors.New("account asset mismatch")
	ErrNotOwner        = errors.New("authorizer does not own source account")
	ErrInsufficient    = errors.New("insufficient balance")
)

// Ledger is an in-memory asset ledger. It enforces the transfer contract
// the engine relies on: the authorizer must be the registered owner of the
// source account, and both sides must hold the same asset.
type Ledger struct {
	mu       sync.Mutex
	accounts map[common.Address]model.Account
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[common.Address]model.Account)}
}

// CreateAccount registers a new account with a zero balance.
func (l *Ledger) CreateAccount(ctx context.Context, address, asset, owner common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[address]; ok {
		return ErrAccountExists
	}
	l.accounts[address] = model.Account{Address: address, Asset: asset, Owner: owner}
	return nil
}

// Mint credits freshly issued units to an account. Funding hook for tests
// and local tooling; a production ledger would sit behind the same
// interface without it.
func (l *Ledger) Mint(ctx context.Context, address common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[address]
	if !ok {
		return ErrAccountNotFound
	}
	balance, err := safemath.Add(account.Balance, amount)
	if err != nil {
		return err
	}
	account.Balance = balance
	l.accounts[address] = account
	return nil
}

// Account returns the registered account record.
func (l *Ledger) Account(ctx context.Context, address common.Address) (model.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[address]
	if !ok {
		return model.Account{}, ErrAccountNotFound
	}
	return account, nil
}

// Transfer moves amount from one account to another. All-or-nothing: any
// failed check leaves both balances untouched.
func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount uint64, authorizer common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	source, ok := l.accounts[from]
	if !ok {
		return ErrAccountNotFound
	}
	dest, ok := l.accounts[to]
	if !ok {
		return ErrAccountNotFound
	}
	if source.Asset != dest.Asset {
		return ErrAssetMismatch
	}
	if source.Owner != authorizer {
		return ErrNotOwner
	}

	debited, err := safemath.Sub(source.Balance, amount)
	if err != nil {
		return ErrInsufficient
	}
	// Same account on both sides: the debit and credit cancel. Writing
	// both locals back would replay the credit on top of the debit.
	if from == to {
		return nil
	}
	credited, err := safemath.Add(dest.Balance, amount)
	if err != nil {
		return err
	}

	source.Balance = debited
	dest.Balance = credited
	l.accounts[from] = source
	l.accounts[to] = dest
	return nil
}
