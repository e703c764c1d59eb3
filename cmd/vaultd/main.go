package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "vaultd",
		Short:        "Proportional-share custody vault",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("pg-dsn", "", "Postgres DSN (file store when empty)")
	root.PersistentFlags().String("state-path", "./data/vaults.json", "vault state snapshot path")
	root.PersistentFlags().String("accounts-path", "./data/accounts.json", "asset ledger snapshot path")
	root.PersistentFlags().String("audit-log", "./data/audit.jsonl", "audit event JSONL path")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a vault for an asset",
		RunE:  runInit,
	}
	initCmd.Flags().String("caller", "", "administrator address")
	initCmd.Flags().String("asset", "", "asset address")
	initCmd.Flags().String("custody", "", "custody account address")
	initCmd.Flags().Uint64("nonce", 0, "authority derivation nonce")
	root.AddCommand(initCmd)

	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit assets and mint shares",
		RunE:  runDeposit,
	}
	depositCmd.Flags().String("caller", "", "depositor address")
	depositCmd.Flags().String("asset", "", "asset address")
	depositCmd.Flags().String("custody", "", "custody account address")
	depositCmd.Flags().String("account", "", "depositor's asset account address")
	depositCmd.Flags().Uint64("amount", 0, "asset units to deposit")
	root.AddCommand(depositCmd)

	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Burn shares and withdraw assets",
		RunE:  runWithdraw,
	}
	withdrawCmd.Flags().String("caller", "", "depositor address")
	withdrawCmd.Flags().String("asset", "", "asset address")
	withdrawCmd.Flags().String("custody", "", "custody account address")
	withdrawCmd.Flags().String("account", "", "depositor's asset account address")
	withdrawCmd.Flags().Uint64("shares", 0, "shares to burn")
	root.AddCommand(withdrawCmd)

	pauseCmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause deposits (administrator only)",
		RunE:  runPause,
	}
	pauseCmd.Flags().String("caller", "", "administrator address")
	pauseCmd.Flags().String("asset", "", "asset address")
	pauseCmd.Flags().String("custody", "", "custody account address")
	root.AddCommand(pauseCmd)

	unpauseCmd := &cobra.Command{
		Use:   "unpause",
		Short: "Re-enable deposits (administrator only)",
		RunE:  runUnpause,
	}
	unpauseCmd.Flags().String("caller", "", "administrator address")
	unpauseCmd.Flags().String("asset", "", "asset address")
	unpauseCmd.Flags().String("custody", "", "custody account address")
	root.AddCommand(unpauseCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show vault totals and, optionally, one position",
		RunE:  runStatus,
	}
	statusCmd.Flags().String("asset", "", "asset address")
	statusCmd.Flags().String("custody", "", "custody account address")
	statusCmd.Flags().String("owner", "", "position owner address (optional)")
	root.AddCommand(statusCmd)

	accountCmd := &cobra.Command{
		Use:   "create-account",
		Short: "Register an asset ledger account",
		RunE:  runCreateAccount,
	}
	accountCmd.Flags().String("account", "", "account address")
	accountCmd.Flags().String("asset", "", "asset address")
	accountCmd.Flags().String("owner", "", "owner address (custody accounts derive theirs)")
	accountCmd.Flags().Uint64("nonce", 0, "derive the owner from asset+nonce instead of --owner")
	accountCmd.Flags().Bool("custody", false, "register as a vault custody account")
	accountCmd.Flags().Uint64("mint", 0, "initial balance to mint")
	root.AddCommand(accountCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
