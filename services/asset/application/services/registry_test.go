package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	assetdomain "github.com/omnik-labs/marketplace/services/asset/domain"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
)

var (
	collection = models.Collection{
		Contract: identity.MustParseAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"),
		Name:     "Omnik NFT",
		Symbol:   "OMNIK",
	}
	alice  = identity.MustParseAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob    = identity.MustParseAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	market = identity.MustParseAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
)

const uri = "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"

func newRegistry() (*Registry, *memtx.World) {
	world := memtx.New(nil)
	return NewInMemory(world, collection, logger.Discard()).Registry, world
}

func mint(t *testing.T, r *Registry, owner identity.Address) *models.Asset {
	t.Helper()
	a, err := r.Mint(context.Background(), owner, uri)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return a
}

func TestMint_DenseIDs(t *testing.T) {
	r, _ := newRegistry()
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		if a := mint(t, r, alice); a.TokenID != want {
			t.Fatalf("expected token id %d, got %d", want, a.TokenID)
		}
	}
	n, err := r.TokenCount(ctx, collection.Contract)
	if err != nil || n != 3 {
		t.Fatalf("TokenCount = %d, %v; want 3", n, err)
	}
	bal, err := r.BalanceOf(ctx, collection.Contract, alice)
	if err != nil || bal != 3 {
		t.Fatalf("BalanceOf = %d, %v; want 3", bal, err)
	}
	got, err := r.TokenURI(ctx, models.Ref{Contract: collection.Contract, TokenID: 2})
	if err != nil || got != uri {
		t.Fatalf("TokenURI = %q, %v", got, err)
	}
}

func TestMint_Rejects(t *testing.T) {
	r, _ := newRegistry()
	ctx := context.Background()

	if _, err := r.Mint(ctx, "", uri); !errors.Is(err, assetdomain.ErrInvalidRecipient) {
		t.Fatalf("empty owner: expected ErrInvalidRecipient, got %v", err)
	}
	if _, err := r.Mint(ctx, alice, "not a uri"); !errors.Is(err, assetdomain.ErrInvalidTokenURI) {
		t.Fatalf("bad uri: expected ErrInvalidTokenURI, got %v", err)
	}
	if n, _ := r.TokenCount(ctx, collection.Contract); n != 0 {
		t.Fatalf("rejected mints must not consume ids, count = %d", n)
	}
}

func TestTransfer_Guards(t *testing.T) {
	r, _ := newRegistry()
	ctx := context.Background()
	a := mint(t, r, alice)

	err := r.Transfer(ctx, a.Contract, a.TokenID, alice, market, market)
	if !errors.Is(err, assetdomain.ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved before approval, got %v", err)
	}

	if err := r.SetApprovalForAll(ctx, a.Contract, alice, market, true); err != nil {
		t.Fatalf("SetApprovalForAll: %v", err)
	}
	ok, err := r.IsApprovedForAll(ctx, a.Contract, alice, market)
	if err != nil || !ok {
		t.Fatalf("IsApprovedForAll = %v, %v", ok, err)
	}
	if err := r.Transfer(ctx, a.Contract, a.TokenID, alice, market, market); err != nil {
		t.Fatalf("approved transfer: %v", err)
	}
	if owner, _ := r.OwnerOf(ctx, a.Ref()); owner != market {
		t.Fatalf("expected market to own token, got %s", owner)
	}

	if err := r.Transfer(ctx, a.Contract, a.TokenID, alice, bob, alice); !errors.Is(err, assetdomain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := r.Transfer(ctx, a.Contract, 99, market, bob, market); !errors.Is(err, assetdomain.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
	if err := r.Transfer(ctx, bob, 1, market, bob, market); !errors.Is(err, assetdomain.ErrAssetNotFound) {
		t.Fatalf("unknown contract: expected ErrAssetNotFound, got %v", err)
	}
	if err := r.Transfer(ctx, a.Contract, a.TokenID, market, "", market); !errors.Is(err, assetdomain.ErrInvalidRecipient) {
		t.Fatalf("expected ErrInvalidRecipient, got %v", err)
	}
}

func TestSetApprovalForAll_RevokeAndSelf(t *testing.T) {
	r, _ := newRegistry()
	ctx := context.Background()

	if err := r.SetApprovalForAll(ctx, collection.Contract, alice, alice, true); !errors.Is(err, assetdomain.ErrInvalidOperator) {
		t.Fatalf("self approval: expected ErrInvalidOperator, got %v", err)
	}
	if err := r.SetApprovalForAll(ctx, collection.Contract, alice, market, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := r.SetApprovalForAll(ctx, collection.Contract, alice, market, false); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := r.IsApprovedForAll(ctx, collection.Contract, alice, market); ok {
		t.Fatal("approval must be revoked")
	}
}

func TestTransfer_RollsBackWithCallerTransaction(t *testing.T) {
	r, world := newRegistry()
	ctx := context.Background()
	a := mint(t, r, alice)

	boom := errors.New("ledger write failed")
	err := world.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.Transfer(ctx, a.Contract, a.TokenID, alice, bob, alice); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if owner, _ := r.OwnerOf(ctx, a.Ref()); owner != alice {
		t.Fatalf("transfer must roll back with the caller, owner = %s", owner)
	}
}

func TestMint_ConcurrentIDsAreDistinct(t *testing.T) {
	r, _ := newRegistry()
	const n = 32

	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := r.Mint(context.Background(), alice, uri)
			if err != nil {
				t.Errorf("Mint: %v", err)
				return
			}
			ids <- a.TokenID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		if id < 1 || id > n || seen[id] {
			t.Fatalf("token id %d duplicated or out of range", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d ids, got %d", n, len(seen))
	}
}
