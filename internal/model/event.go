package model

import "github.com/ethereum/go-ethereum/common"

// DepositEvent is emitted after a completed deposit.
type DepositEvent struct {
	VaultKey  common.Hash    `json:"vault_key"`
	Depositor common.Address `json:"depositor"`
	Amount    uint64         `json:"amount"`
	Shares    uint64         `json:"shares"`
	Timestamp int64          `json:"timestamp"`
}

// WithdrawEvent is emitted after a completed withdrawal.
type WithdrawEvent struct {
	VaultKey  common.Hash    `json:"vault_key"`
	Depositor common.Address `json:"depositor"`
	Assets    uint64         `json:"assets"`
	Shares    uint64         `json:"shares"`
	Timestamp int64          `json:"timestamp"`
}
