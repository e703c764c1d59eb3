package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"custodyvault/internal/audit"
	"custodyvault/internal/config"
	"custodyvault/internal/model"
	"custodyvault/internal/store"
	"custodyvault/internal/store/postgres"
	"custodyvault/internal/token"
	"custodyvault/internal/vault"
)

// env bundles the wired engine and its collaborators for one CLI run.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	engine *vault.Engine
	ledger *token.Ledger
	close  func()
}

func buildEnv(cmd *cobra.Command) (*env, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	ledger, err := token.LoadFile(cfg.AccountsPath)
	if err != nil {
		return nil, err
	}

	var st store.Store
	closeStore := func() {}
	if cfg.PgDSN != "" {
		pgStore, err := postgres.NewStore(cmd.Context(), cfg.PgDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pgStore.EnsureSchema(cmd.Context()); err != nil {
			pgStore.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		st = pgStore
		closeStore = pgStore.Close
	} else {
		st = store.NewFileStore(cfg.StatePath)
	}

	sink := audit.MultiSink{
		audit.NewZapSink(logger),
		audit.NewJsonlSink(cfg.AuditLog, logger),
	}
	engine := vault.NewEngine(st, ledger, sink, logger)

	return &env{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		ledger: ledger,
		close: func() {
			closeStore()
			logger.Sync()
		},
	}, nil
}

// saveAccounts persists the asset ledger snapshot after a mutating run.
func (e *env) saveAccounts() error {
	return e.ledger.SaveFile(e.cfg.AccountsPath)
}

func addressFlag(cmd *cobra.Command, name string) (common.Address, error) {
	value, _ := cmd.Flags().GetString(name)
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("--%s must be a hex address", name)
	}
	return common.HexToAddress(value), nil
}

func vaultKeyFlags(cmd *cobra.Command) (common.Address, common.Address, common.Hash, error) {
	asset, err := addressFlag(cmd, "asset")
	if err != nil {
		return common.Address{}, common.Address{}, common.Hash{}, err
	}
	custody, err := addressFlag(cmd, "custody")
	if err != nil {
		return common.Address{}, common.Address{}, common.Hash{}, err
	}
	return asset, custody, model.VaultKey(asset, custody), nil
}

func runInit(cmd *cobra.Command, _ []string) error {
	e, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	caller, err := addressFlag(cmd, "caller")
	if err != nil {
		return err
	}
	asset, custody, _, err := vaultKeyFlags(cmd)
	if err != nil {
		return err
	}
	nonce, _ := cmd.Flags().GetUint64("nonce")

	record, err := e.engine.Initialize(context.Background(), caller, asset, custody, nonce)
	if err != nil {
		return err
	}

	fmt.Printf("vault %s initialized\n", record.Key().Hex())
	return nil
}

func runDeposit(cmd *cobra.Command, _ []string) error {
	e, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	caller, err := addressFlag(cmd, "caller")
	if err != nil {
		return err
	}
	_, _, key, err := vaultKeyFlags(cmd)
	if err != nil {
		return err
	}
	account, err := addressFlag(cmd, "account")
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")

	shares, err := e.engine.Deposit(context.Background(), caller, key, account, amount)
	if err != nil {
		return err
	}
	if err := e.saveAccounts(); err != nil {
		return err
	}

	fmt.Printf("minted %d shares\n", shares)
	return nil
}

func runWithdraw(cmd *cobra.Command, _ []string) error {
	e, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	caller, err := addressFlag(cmd, "caller")
	if err != nil {
		return err
	}
	_, _, key, err := vaultKeyFlags(cmd)
	if err != nil {
		return err
	}
	account, err := addressFlag(cmd, "account")
	if err != nil {
		return err
	}
	shares, _ := cmd.Flags().GetUint64("shares")

	assets, err := e.engine.Withdraw(context.Background(), caller, key, account, shares)
	if err != nil {
		return err
	}
	if err := e.saveAccounts(); err != nil {
		return err
	}

	fmt.Printf("returned %d asset units\n", assets)
	return nil
}

func runPause(cmd *cobra.Command, _ []string) error {
	e, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	caller, err := addressFlag(cmd, "caller")
	if err != nil {
		return err
	}
	_, _, key, err := vaultKeyFlags(cmd)
	if err != nil {
		return err
	}
	return e.engine.Pause(context.Background(), caller, key)
}

func runUnpause(cmd *cobra.Command, _ []string) error {
	e, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	caller, err := addressFlag(cmd, "caller")
	if err != nil {
		return err
	}
	_, _, key, err := vaultKeyFlags(cmd)
	if err != nil {
		return err
	}
	return e.engine.Unpause(context.Background(), caller, key)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	e, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	_, _, key, err := vaultKeyFlags(cmd)
	if err != nil {
		return err
	}

	record, err := e.engine.Vault(context.Background(), key)
	if err != nil {
		return err
	}

	fmt.Printf("vault %s\n", key.Hex())
	fmt.Printf("  administrator: %s\n", record.Administrator.Hex())
	fmt.Printf("  total assets:  %d\n", record.TotalAssets)
	fmt.Printf("  total shares:  %d\n", record.TotalShares)
	fmt.Printf("  paused:        %v\n", record.Paused)

	if ownerValue, _ := cmd.Flags().GetString("owner"); ownerValue != "" {
		owner, err := addressFlag(cmd, "owner")
		if err != nil {
			return err
		}
		position, err := e.engine.Position(context.Background(), key, owner)
		if err != nil {
			return err
		}
		fmt.Printf("  position %s: %d shares\n", owner.Hex(), position.Shares)
	}
	return nil
}

func runCreateAccount(cmd *cobra.Command, _ []string) error {
	e, err := buildEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	account, err := addressFlag(cmd, "account")
	if err != nil {
		return err
	}
	asset, err := addressFlag(cmd, "asset")
	if err != nil {
		return err
	}

	var owner common.Address
	if isCustody, _ := cmd.Flags().GetBool("custody"); isCustody {
		nonce, _ := cmd.Flags().GetUint64("nonce")
		owner = model.DeriveAuthority(asset, nonce)
	} else {
		owner, err = addressFlag(cmd, "owner")
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	if err := e.ledger.CreateAccount(ctx, account, asset, owner); err != nil {
		return err
	}
	if mint, _ := cmd.Flags().GetUint64("mint"); mint > 0 {
		if err := e.ledger.Mint(ctx, account, mint); err != nil {
			return err
		}
	}
	if err := e.saveAccounts(); err != nil {
		return err
	}

	fmt.Printf("account %s registered (owner %s)\n", account.Hex(), owner.Hex())
	return nil
}
