package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"custodyvault/internal/audit"
	"custodyvault/internal/model"
	"custodyvault/internal/safemath"
	"custodyvault/internal/store"
)

// AssetLedger is the external transfer capability. Transfer is
// all-or-nothing; the ledger enforces that the authorizer owns the source
// account.
type AssetLedger interface {
	Account(ctx context.Context, address common.Address) (model.Account, error)
	Transfer(ctx context.Context, from, to common.Address, amount uint64, authorizer common.Address) error
}

// Engine executes vault operations against a Store and an AssetLedger.
// It performs no locking of its own: the host serializes operations that
// touch the same vault.
type Engine struct {
	store  store.Store
	assets AssetLedger
	audit  audit.Sink
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(st store.Store, assets AssetLedger, sink audit.Sink, logger *zap.Logger) *Engine {
	if sink == nil {
		sink = audit.NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  st,
		assets: assets,
		audit:  sink,
		logger: logger,
		now:    time.Now,
	}
}

// Initialize creates the vault record for (asset, custody) with the caller
// as administrator. Fails with store.ErrVaultExists when the vault is
// already initialized.
func (e *Engine) Initialize(ctx context.Context, caller, asset, custody common.Address, nonce uint64) (model.Vault, error) {
	custodyAccount, err := e.assets.Account(ctx, custody)
	if err != nil {
		return model.Vault{}, fmt.Errorf("custody account: %w", err)
	}
	if custodyAccount.Asset != asset {
		return model.Vault{}, fmt.Errorf("custody account holds wrong asset")
	}
	authority := model.DeriveAuthority(asset, nonce)
	if custodyAccount.Owner != authority {
		return model.Vault{}, fmt.Errorf("custody account not owned by derived authority")
	}

	vault := model.Vault{
		Administrator:   caller,
		AssetID:         asset,
		CustodyAccount:  custody,
		DerivationNonce: nonce,
	}
	if err := e.store.CreateVault(ctx, vault); err != nil {
		return model.Vault{}, err
	}

	e.logger.Info("vault initialized",
		zap.String("vault_key", vault.Key().Hex()),
		zap.String("administrator", caller.Hex()),
		zap.String("asset", asset.Hex()),
	)
	return vault, nil
}

// Deposit moves amount from the caller's account into custody and mints
// shares at the current exchange rate. The transfer runs before the ledger
// commit, so a failed transfer leaves no state behind. Returns the minted
// share count.
func (e *Engine) Deposit(ctx context.Context, caller common.Address, key common.Hash, userAccount common.Address, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}

	vault, err := e.store.GetVault(ctx, key)
	if err != nil {
		return 0, err
	}
	if vault.Paused {
		return 0, ErrVaultPaused
	}
	if err := e.verifyAccounts(ctx, vault, userAccount, caller); err != nil {
		return 0, err
	}

	// total_shares == 0 is the sole bootstrap trigger, even when dust has
	// left total_assets nonzero. On the pro-rata path a zero total_assets
	// denominator fails as a checked divide.
	var shares uint64
	if vault.TotalShares == 0 {
		shares = amount
	} else {
		shares, err = safemath.MulDiv(amount, vault.TotalShares, vault.TotalAssets)
		if err != nil {
			return 0, ErrMathOverflow
		}
	}

	totalAssets, err := safemath.Add(vault.TotalAssets, amount)
	if err != nil {
		return 0, ErrMathOverflow
	}
	totalShares, err := safemath.Add(vault.TotalShares, shares)
	if err != nil {
		return 0, ErrMathOverflow
	}

	position, _, err := e.store.GetPosition(ctx, key, caller)
	if err != nil {
		return 0, err
	}
	position.Owner = caller
	positionShares, err := safemath.Add(position.Shares, shares)
	if err != nil {
		return 0, ErrMathOverflow
	}

	if err := e.assets.Transfer(ctx, userAccount, vault.CustodyAccount, amount, caller); err != nil {
		return 0, fmt.Errorf("deposit transfer: %w", err)
	}

	vault.TotalAssets = totalAssets
	vault.TotalShares = totalShares
	position.Shares = positionShares
	if err := e.store.Apply(ctx, vault, position); err != nil {
		// Undo the inbound transfer so the depositor is made whole.
		authority := model.DeriveAuthority(vault.AssetID, vault.DerivationNonce)
		if refundErr := e.assets.Transfer(ctx, vault.CustodyAccount, userAccount, amount, authority); refundErr != nil {
			e.logger.Error("deposit refund failed",
				zap.String("vault_key", key.Hex()),
				zap.Error(refundErr),
			)
		}
		return 0, err
	}

	event := model.DepositEvent{
		VaultKey:  key,
		Depositor: caller,
		Amount:    amount,
		Shares:    shares,
		Timestamp: e.now().Unix(),
	}
	e.audit.DepositRecorded(event)
	e.logger.Info("deposit",
		zap.String("vault_key", key.Hex()),
		zap.String("depositor", caller.Hex()),
		zap.Uint64("amount", amount),
		zap.Uint64("shares", shares),
	)
	return shares, nil
}

// Withdraw burns shares and returns the proportional slice of the pool.
// Ledger state commits before the outbound transfer so a reentrant call
// through the transfer capability already sees the reduced balances; a
// failed transfer rolls the commit back. Returns the asset amount paid out.
func (e *Engine) Withdraw(ctx context.Context, caller common.Address, key common.Hash, userAccount common.Address, shares uint64) (uint64, error) {
	if shares == 0 {
		return 0, ErrZeroAmount
	}

	vault, err := e.store.GetVault(ctx, key)
	if err != nil {
		return 0, err
	}
	position, _, err := e.store.GetPosition(ctx, key, caller)
	if err != nil {
		return 0, err
	}
	if position.Shares < shares {
		return 0, ErrInsufficientShares
	}
	if err := e.verifyAccounts(ctx, vault, userAccount, caller); err != nil {
		return 0, err
	}

	assets, err := safemath.MulDiv(shares, vault.TotalAssets, vault.TotalShares)
	if err != nil {
		return 0, ErrMathOverflow
	}
	// Unreachable while share conservation holds; asserted anyway.
	if assets > vault.TotalAssets {
		return 0, ErrInsufficientAssets
	}

	priorVault := vault
	priorPosition := position

	vault.TotalAssets, err = safemath.Sub(vault.TotalAssets, assets)
	if err != nil {
		return 0, ErrMathOverflow
	}
	vault.TotalShares, err = safemath.Sub(vault.TotalShares, shares)
	if err != nil {
		return 0, ErrMathOverflow
	}
	position.Owner = caller
	position.Shares, err = safemath.Sub(position.Shares, shares)
	if err != nil {
		return 0, ErrMathOverflow
	}

	if err := e.store.Apply(ctx, vault, position); err != nil {
		return 0, err
	}

	authority := model.DeriveAuthority(vault.AssetID, vault.DerivationNonce)
	if err := e.assets.Transfer(ctx, vault.CustodyAccount, userAccount, assets, authority); err != nil {
		if rollbackErr := e.store.Apply(ctx, priorVault, priorPosition); rollbackErr != nil {
			e.logger.Error("withdraw rollback failed",
				zap.String("vault_key", key.Hex()),
				zap.Error(rollbackErr),
			)
		}
		return 0, fmt.Errorf("withdraw transfer: %w", err)
	}

	event := model.WithdrawEvent{
		VaultKey:  key,
		Depositor: caller,
		Assets:    assets,
		Shares:    shares,
		Timestamp: e.now().Unix(),
	}
	e.audit.WithdrawRecorded(event)
	e.logger.Info("withdraw",
		zap.String("vault_key", key.Hex()),
		zap.String("depositor", caller.Hex()),
		zap.Uint64("assets", assets),
		zap.Uint64("shares", shares),
	)
	return assets, nil
}

// Pause blocks new deposits. Administrator only.
func (e *Engine) Pause(ctx context.Context, caller common.Address, key common.Hash) error {
	vault, err := e.store.GetVault(ctx, key)
	if err != nil {
		return err
	}
	if vault.Administrator != caller {
		return ErrUnauthorized
	}
	if vault.Paused {
		return ErrAlreadyPaused
	}
	vault.Paused = true
	if err := e.store.PutVault(ctx, vault); err != nil {
		return err
	}
	e.logger.Info("vault paused", zap.String("vault_key", key.Hex()))
	return nil
}

// Unpause re-enables deposits. Administrator only.
func (e *Engine) Unpause(ctx context.Context, caller common.Address, key common.Hash) error {
	vault, err := e.store.GetVault(ctx, key)
	if err != nil {
		return err
	}
	if vault.Administrator != caller {
		return ErrUnauthorized
	}
	if !vault.Paused {
		return ErrNotPaused
	}
	vault.Paused = false
	if err := e.store.PutVault(ctx, vault); err != nil {
		return err
	}
	e.logger.Info("vault unpaused", zap.String("vault_key", key.Hex()))
	return nil
}

// Vault returns the current vault record.
func (e *Engine) Vault(ctx context.Context, key common.Hash) (model.Vault, error) {
	return e.store.GetVault(ctx, key)
}

// Position returns the caller's position; absent positions read as zero.
func (e *Engine) Position(ctx context.Context, key common.Hash, owner common.Address) (model.Position, error) {
	position, ok, err := e.store.GetPosition(ctx, key, owner)
	if err != nil {
		return model.Position{}, err
	}
	if !ok {
		return model.Position{Owner: owner}, nil
	}
	return position, nil
}

// verifyAccounts checks the transfer preconditions: the user account holds
// the vault's asset and belongs to the caller, and the custody account is
// the one recorded in the vault.
func (e *Engine) verifyAccounts(ctx context.Context, vault model.Vault, userAccount, caller common.Address) error {
	account, err := e.assets.Account(ctx, userAccount)
	if err != nil {
		return fmt.Errorf("user account: %w", err)
	}
	if account.Asset != vault.AssetID {
		return fmt.Errorf("user account holds wrong asset")
	}
	if account.Owner != caller {
		return fmt.Errorf("user account not owned by caller")
	}

	custody, err := e.assets.Account(ctx, vault.CustodyAccount)
	if err != nil {
		return fmt.Errorf("custody account: %w", err)
	}
	if custody.Asset != vault.AssetID {
		return fmt.Errorf("custody account holds wrong asset")
	}
	return nil
}
