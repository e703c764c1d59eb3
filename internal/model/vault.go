package model

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Vault is the per-asset pool record. Administrator, AssetID,
// CustodyAccount and DerivationNonce are set at creation and never change;
// the totals and the pause flag are the only mutable fields.
type Vault struct {
	Administrator   common.Address `json:"administrator"`
	AssetID         common.Address `json:"asset_id"`
	CustodyAccount  common.Address `json:"custody_account"`
	TotalAssets     uint64         `json:"total_assets"`
	TotalShares     uint64         `json:"total_shares"`
	Paused          bool           `json:"paused"`
	DerivationNonce uint64         `json:"derivation_nonce"`
}

// Key returns the deterministic store key for this vault.
func (v Vault) Key() common.Hash {
	return VaultKey(v.AssetID, v.CustodyAccount)
}

// VaultKey derives the store key for the (asset, custody account) pair.
func VaultKey(asset, custody common.Address) common.Hash {
	return common.BytesToHash(crypto.Keccak256([]byte("vault"), asset.Bytes(), custody.Bytes()))
}

// DeriveAuthority computes the vault's custody signing address from its
// immutable parameters. The custody account is registered under this
// address, so outgoing transfers are proven by re-derivation rather than
// by a stored credential.
func DeriveAuthority(asset common.Address, nonce uint64) common.Address {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	hash := crypto.Keccak256([]byte("vault-authority"), asset.Bytes(), buf[:])
	return common.BytesToAddress(hash[12:])
}
