package model

import "github.com/ethereum/go-ethereum/common"

// Position is a depositor's share balance in one vault. Created lazily on
// first deposit and kept around even when the balance drops back to zero.
type Position struct {
	Owner  common.Address `json:"owner"`
	Shares uint64         `json:"shares"`
}
