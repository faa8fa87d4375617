package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/omnik-labs/marketplace/pkg/app"
	"github.com/omnik-labs/marketplace/pkg/config"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	assetsvcs "github.com/omnik-labs/marketplace/services/asset/application/services"
	assetmodels "github.com/omnik-labs/marketplace/services/asset/domain/models"
	appsvcs "github.com/omnik-labs/marketplace/services/market/application/services"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
	walletsvcs "github.com/omnik-labs/marketplace/services/wallet/application/services"
)

var (
	market   = identity.MustParseAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	deployer = identity.MustParseAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	contract = identity.MustParseAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512")
)

func newApp(contractAddr string) *app.Application {
	return &app.Application{
		Config: &config.Config{
			AssetContractAddress: contractAddr,
			CurrencySymbol:       "ETH",
			CurrencyDecimals:     18,
		},
		Logger: logger.Discard(),
		SessionStore: sessions.NewCookieStore(
			[]byte("test-auth-key-must-be-32-bytes!!"),
			[]byte("test-enc-key-must-be-32-bytes!!!"),
		),
	}
}

func newServices(t *testing.T) *appsvcs.Services {
	t.Helper()
	log := logger.Discard()
	world := memtx.New(nil)
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubsub.Close() })

	registry := assetsvcs.NewInMemory(world, assetmodels.Collection{Contract: contract, Name: "Omnik NFT", Symbol: "OMNIK"}, log).Registry
	wallet := walletsvcs.NewInMemory(world, log).Wallet
	svcs := appsvcs.NewInMemory(world, models.LedgerConfig{Address: market, FeeRecipient: deployer, FeePercent: 1},
		registry, wallet, pubsub, nil, log)
	if err := svcs.Ledger.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return svcs
}

func TestMarketRoutes_Mounts(t *testing.T) {
	r := chi.NewRouter()
	MarketRoutes(r, newApp(contract.String()), newServices(t), nil)

	tests := []struct {
		method string
		target string
		body   string
		want   int
	}{
		{http.MethodGet, "/ledger", "", http.StatusOK},
		{http.MethodGet, "/items", "", http.StatusOK},
		{http.MethodGet, "/items/1", "", http.StatusNotFound},
		{http.MethodPost, "/items", `{"token_id":1,"price":"1"}`, http.StatusUnauthorized},
		{http.MethodPost, "/items/1/purchase", `{"payment":"1"}`, http.StatusUnauthorized},
		// Async settlement is mounted only with a settlement client.
		{http.MethodGet, "/settlements/purchase-1", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body)
			}
		})
	}
}

func TestMarketRoutes_InvalidContractPanicsAtRegistration(t *testing.T) {
	for _, addr := range []string{"", "0x12", "not-an-address"} {
		t.Run(addr, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for contract %q", addr)
				}
			}()
			MarketRoutes(chi.NewRouter(), newApp(addr), newServices(t), nil)
		})
	}
}
