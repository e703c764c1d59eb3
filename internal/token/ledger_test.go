package token

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	asset = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	accA  = common.HexToAddress("0x0000000000000000000000000000000000000101")
	accB  = common.HexToAddress("0x0000000000000000000000000000000000000102")
)

func newFundedLedger(t *testing.T) *Ledger {
	t.Helper()
	ctx := context.Background()
	ledger := NewLedger()
	if err := ledger.CreateAccount(ctx, accA, asset, alice); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := ledger.CreateAccount(ctx, accB, asset, bob); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := ledger.Mint(ctx, accA, 1000); err != nil {
		t.Fatalf("mint: %v", err)
	}
	return ledger
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	ledger := newFundedLedger(t)

	if err := ledger.Transfer(ctx, accA, accB, 300, alice); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	source, _ := ledger.Account(ctx, accA)
	dest, _ := ledger.Account(ctx, accB)
	if source.Balance != 700 || dest.Balance != 300 {
		t.Fatalf("balances mismatch: %d / %d", source.Balance, dest.Balance)
	}
}

func TestTransferRequiresOwner(t *testing.T) {
	ctx := context.Background()
	ledger := newFundedLedger(t)

	if err := ledger.Transfer(ctx, accA, accB, 300, bob); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	source, _ := ledger.Account(ctx, accA)
	if source.Balance != 1000 {
		t.Fatalf("failed transfer must not move funds: %d", source.Balance)
	}
}

func TestTransferSelfKeepsBalance(t *testing.T) {
	ctx := context.Background()
	ledger := newFundedLedger(t)

	if err := ledger.Transfer(ctx, accA, accA, 300, alice); err != nil {
		t.Fatalf("self transfer failed: %v", err)
	}

	account, _ := ledger.Account(ctx, accA)
	if account.Balance != 1000 {
		t.Fatalf("self transfer changed balance: got %d, want 1000", account.Balance)
	}

	// Ownership and balance checks still apply.
	if err := ledger.Transfer(ctx, accA, accA, 300, bob); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := ledger.Transfer(ctx, accA, accA, 1001, alice); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("expected ErrInsufficient, got %v", err)
	}
}

func TestTransferInsufficient(t *testing.T) {
	ctx := context.Background()
	ledger := newFundedLedger(t)

	if err := ledger.Transfer(ctx, accA, accB, 1001, alice); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("expected ErrInsufficient, got %v", err)
	}
}

func TestTransferAssetMismatch(t *testing.T) {
	ctx := context.Background()
	ledger := newFundedLedger(t)

	otherAsset := common.HexToAddress("0x00000000000000000000000000000000000000ab")
	accC := common.HexToAddress("0x0000000000000000000000000000000000000103")
	if err := ledger.CreateAccount(ctx, accC, otherAsset, bob); err != nil {
		t.Fatalf("create account: %v", err)
	}

	if err := ledger.Transfer(ctx, accA, accC, 100, alice); !errors.Is(err, ErrAssetMismatch) {
		t.Fatalf("expected ErrAssetMismatch, got %v", err)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	ctx := context.Background()
	ledger := newFundedLedger(t)

	if err := ledger.CreateAccount(ctx, accA, asset, alice); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}
