package model

import "github.com/ethereum/go-ethereum/common"

// Account is an asset-ledger account as seen by the engine: an address
// holding a balance of exactly one asset on behalf of one owner.
type Account struct {
	Address common.Address `json:"address"`
	Asset   common.Address `json:"asset"`
	Owner   common.Address `json:"owner"`
	Balance uint64         `json:"balance"`
}
