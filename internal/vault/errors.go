package vault

import "errors"

// Engine error taxonomy. Every failure aborts the whole operation; no
// partial ledger state survives any of these.
var (
	ErrZeroAmount         = errors.New("amount must be greater than zero")
	ErrVaultPaused        = errors.New("vault is paused")
	ErrNotPaused          = errors.New("vault is not paused")
	ErrAlreadyPaused      = errors.New("vault is already paused")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInsufficientAssets = errors.New("insufficient assets in vault")
	ErrMathOverflow       = errors.New("math overflow")
	ErrUnauthorized       = errors.New("unauthorized")
)
