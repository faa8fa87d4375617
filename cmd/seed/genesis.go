package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/money"
	assetServices "github.com/omnik-labs/marketplace/services/asset/application/services"
	assetModels "github.com/omnik-labs/marketplace/services/asset/domain/models"
	marketServices "github.com/omnik-labs/marketplace/services/market/application/services"
	marketModels "github.com/omnik-labs/marketplace/services/market/domain/models"
	walletServices "github.com/omnik-labs/marketplace/services/wallet/application/services"
)

// Genesis is the initial marketplace state read from a TOML file.
//
//	[[accounts]]
//	address = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
//	balance = "100"            # display units
//
//	[[assets]]
//	owner = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
//	token_uri = "ipfs://..."
//	approve_market = true
//
//	[[listings]]
//	asset = 1                  # 1-based position in [[assets]]
//	price = "2"                # display units
type Genesis struct {
	Accounts []GenesisAccount `toml:"accounts"`
	Assets   []GenesisAsset   `toml:"assets"`
	Listings []GenesisListing `toml:"listings"`
}

type GenesisAccount struct {
	Address string `toml:"address"`
	Balance string `toml:"balance"`
}

type GenesisAsset struct {
	Owner         string `toml:"owner"`
	TokenURI      string `toml:"token_uri"`
	ApproveMarket bool   `toml:"approve_market"`
}

type GenesisListing struct {
	Asset int    `toml:"asset"`
	Price string `toml:"price"`
}

// Summary reports what Apply created.
type Summary struct {
	Accounts int
	TokenIDs []uint64
	ItemIDs  []int64
}

// target is the set of services a genesis is applied through.
type target struct {
	tx       database.Transactor
	wallet   *walletServices.WalletService
	registry *assetServices.Registry
	ledger   *marketServices.LedgerService
}

func loadGenesis(path string) (*Genesis, error) {
	var g Genesis
	meta, err := toml.DecodeFile(path, &g)
	if err != nil {
		return nil, fmt.Errorf("load genesis: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load genesis: unknown keys %s", strings.Join(keys, ", "))
	}
	return &g, nil
}

// Apply writes the genesis in one transaction; any failure leaves the store untouched.
func (g *Genesis) Apply(ctx context.Context, t target, currency money.Currency) (*Summary, error) {
	sum := &Summary{}
	market := t.ledger.Config().Address

	err := t.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, acct := range g.Accounts {
			addr, err := identity.ParseAddress(acct.Address)
			if err != nil {
				return fmt.Errorf("accounts[%d]: %w", i, err)
			}
			amount, err := currency.ParseUnits(acct.Balance)
			if err != nil {
				return fmt.Errorf("accounts[%d]: %w", i, err)
			}
			if _, err := t.wallet.Deposit(ctx, addr, amount); err != nil {
				return fmt.Errorf("accounts[%d]: %w", i, err)
			}
			sum.Accounts++
		}

		for i, a := range g.Assets {
			owner, err := identity.ParseAddress(a.Owner)
			if err != nil {
				return fmt.Errorf("assets[%d]: %w", i, err)
			}
			minted, err := t.registry.Mint(ctx, owner, a.TokenURI)
			if err != nil {
				return fmt.Errorf("assets[%d]: %w", i, err)
			}
			if a.ApproveMarket {
				if err := t.registry.SetApprovalForAll(ctx, minted.Contract, owner, market, true); err != nil {
					return fmt.Errorf("assets[%d]: approve market: %w", i, err)
				}
			}
			sum.TokenIDs = append(sum.TokenIDs, minted.TokenID)
		}

		for i, l := range g.Listings {
			if l.Asset < 1 || l.Asset > len(sum.TokenIDs) {
				return fmt.Errorf("listings[%d]: asset %d is not in [[assets]]", i, l.Asset)
			}
			ref := assetModels.Ref{Contract: t.registry.Contract(), TokenID: sum.TokenIDs[l.Asset-1]}
			seller, err := t.registry.OwnerOf(ctx, ref)
			if err != nil {
				return fmt.Errorf("listings[%d]: %w", i, err)
			}
			price, err := currency.ParseUnits(l.Price)
			if err != nil {
				return fmt.Errorf("listings[%d]: %w", i, err)
			}
			item, err := t.ledger.List(ctx, marketModels.AssetRef{Contract: ref.Contract, TokenID: ref.TokenID}, price, seller)
			if err != nil {
				return fmt.Errorf("listings[%d]: %w", i, err)
			}
			sum.ItemIDs = append(sum.ItemIDs, item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}
