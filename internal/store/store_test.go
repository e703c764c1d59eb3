package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"custodyvault/internal/model"
)

func testVault() model.Vault {
	return model.Vault{
		Administrator:   common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		AssetID:         common.HexToAddress("0x00000000000000000000000000000000000000a2"),
		CustodyAccount:  common.HexToAddress("0x00000000000000000000000000000000000000a3"),
		TotalAssets:     100,
		TotalShares:     100,
		DerivationNonce: 1,
	}
}

func runStoreSuite(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	vault := testVault()

	if _, err := s.GetVault(ctx, vault.Key()); !errors.Is(err, ErrVaultNotFound) {
		t.Fatalf("expected ErrVaultNotFound, got %v", err)
	}
	if err := s.PutVault(ctx, vault); !errors.Is(err, ErrVaultNotFound) {
		t.Fatalf("put before create must fail, got %v", err)
	}

	if err := s.CreateVault(ctx, vault); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.CreateVault(ctx, vault); !errors.Is(err, ErrVaultExists) {
		t.Fatalf("expected ErrVaultExists, got %v", err)
	}

	got, err := s.GetVault(ctx, vault.Key())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !reflect.DeepEqual(got, vault) {
		t.Fatalf("vault mismatch: %+v != %+v", got, vault)
	}

	vault.TotalAssets = 250
	vault.Paused = true
	if err := s.PutVault(ctx, vault); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err = s.GetVault(ctx, vault.Key())
	if err != nil {
		t.Fatalf("get after put failed: %v", err)
	}
	if got.TotalAssets != 250 || !got.Paused {
		t.Fatalf("update not persisted: %+v", got)
	}

	owner := common.HexToAddress("0x00000000000000000000000000000000000000b1")
	if _, ok, err := s.GetPosition(ctx, vault.Key(), owner); err != nil || ok {
		t.Fatalf("missing position must read absent: ok=%v err=%v", ok, err)
	}

	position := model.Position{Owner: owner, Shares: 42}
	if err := s.PutPosition(ctx, vault.Key(), position); err != nil {
		t.Fatalf("put position failed: %v", err)
	}
	gotPos, ok, err := s.GetPosition(ctx, vault.Key(), owner)
	if err != nil || !ok {
		t.Fatalf("get position failed: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(gotPos, position) {
		t.Fatalf("position mismatch: %+v != %+v", gotPos, position)
	}

	vault.TotalAssets = 300
	vault.TotalShares = 300
	position.Shares = 77
	if err := s.Apply(ctx, vault, position); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	got, err = s.GetVault(ctx, vault.Key())
	if err != nil || got.TotalAssets != 300 || got.TotalShares != 300 {
		t.Fatalf("apply did not update vault: %+v err=%v", got, err)
	}
	gotPos, ok, err = s.GetPosition(ctx, vault.Key(), owner)
	if err != nil || !ok || gotPos.Shares != 77 {
		t.Fatalf("apply did not update position: %+v ok=%v err=%v", gotPos, ok, err)
	}

	unknown := vault
	unknown.AssetID = common.HexToAddress("0x00000000000000000000000000000000000000ff")
	if err := s.Apply(ctx, unknown, position); !errors.Is(err, ErrVaultNotFound) {
		t.Fatalf("apply on unknown vault must fail, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaults.json")
	runStoreSuite(t, NewFileStore(path))
}

func TestFileStoreReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vaults.json")
	vault := testVault()

	first := NewFileStore(path)
	if err := first.CreateVault(ctx, vault); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	second := NewFileStore(path)
	got, err := second.GetVault(ctx, vault.Key())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !reflect.DeepEqual(got, vault) {
		t.Fatalf("snapshot mismatch after reload: %+v != %+v", got, vault)
	}
}
