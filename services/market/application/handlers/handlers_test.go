package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-chi/chi/v5"

	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	"github.com/omnik-labs/marketplace/pkg/money"
	assetsvcs "github.com/omnik-labs/marketplace/services/asset/application/services"
	assetmodels "github.com/omnik-labs/marketplace/services/asset/domain/models"
	appsvcs "github.com/omnik-labs/marketplace/services/market/application/services"
	"github.com/omnik-labs/marketplace/services/market/application/workflows"
	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
	walletsvcs "github.com/omnik-labs/marketplace/services/wallet/application/services"
)

var (
	eth = money.Currency{Symbol: "ETH", Decimals: 18}

	deployer = identity.MustParseAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	seller   = identity.MustParseAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	buyer    = identity.MustParseAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	market   = identity.MustParseAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	contract = identity.MustParseAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512")
)

type fakeSettlements struct {
	started []workflows.PurchaseInput
}

func (f *fakeSettlements) Start(_ context.Context, in workflows.PurchaseInput) (string, error) {
	f.started = append(f.started, in)
	return workflows.WorkflowID(in), nil
}

func (f *fakeSettlements) Status(_ context.Context, id string) (*workflows.Settlement, error) {
	for _, in := range f.started {
		if workflows.WorkflowID(in) == id {
			return &workflows.Settlement{WorkflowID: id, Status: workflows.StatusPending}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", marketdomain.ErrSettlementNotFound, id)
}

type env struct {
	router      chi.Router
	registry    *assetsvcs.Registry
	wallet      *walletsvcs.WalletService
	settlements *fakeSettlements
}

func newEnv(t *testing.T) *env {
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
	settlements := &fakeSettlements{}

	r := chi.NewRouter()
	r.Get("/ledger", NewGetLedgerHandler(svcs, eth).Execute)
	r.Get("/items", NewGetItemsHandler(svcs, eth).Execute)
	r.Get("/items/{id}", NewGetItemHandler(svcs, eth).Execute)
	r.Get("/items/{id}/total-price", NewGetTotalPriceHandler(svcs, eth).Execute)
	r.Post("/items", NewPostItemHandler(svcs, eth, contract).Execute)
	r.Post("/items/{id}/purchase", NewPostPurchaseHandler(svcs, eth).Execute)
	r.Post("/items/{id}/purchase/async", NewPostPurchaseAsyncHandler(settlements).Execute)
	r.Get("/settlements/{workflowId}", NewGetSettlementHandler(settlements).Execute)

	return &env{router: r, registry: registry, wallet: wallet, settlements: settlements}
}

func (e *env) do(method, target, body string, caller identity.Address) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req = req.WithContext(identity.WithCaller(req.Context(), caller))
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// mint gives owner a token and approves the ledger for it.
func (e *env) mint(t *testing.T, owner identity.Address) uint64 {
	t.Helper()
	ctx := context.Background()
	a, err := e.registry.Mint(ctx, owner, "ipfs://meta/1.json")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := e.registry.SetApprovalForAll(ctx, contract, owner, market, true); err != nil {
		t.Fatalf("SetApprovalForAll: %v", err)
	}
	return a.TokenID
}

func (e *env) listAt(t *testing.T, price string) ItemResponse {
	t.Helper()
	tokenID := e.mint(t, seller)
	rr := e.do(http.MethodPost, "/items", fmt.Sprintf(`{"token_id":%d,"price":%q}`, tokenID, price), seller)
	if rr.Code != http.StatusCreated {
		t.Fatalf("list: expected 201, got %d: %s", rr.Code, rr.Body)
	}
	return decode[ItemResponse](t, rr)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body, err)
	}
	return v
}

const twoEth = "2000000000000000000"

func TestListAndPurchase(t *testing.T) {
	e := newEnv(t)

	item := e.listAt(t, twoEth)
	if item.ID != 1 || item.TotalPrice != "2020000000000000000" || item.TotalDisplay != "2.02 ETH" || item.Sold {
		t.Fatalf("unexpected item: %+v", item)
	}

	rr := e.do(http.MethodGet, "/items/1/total-price", "", "")
	if rr.Code != http.StatusOK || decode[TotalPriceResponse](t, rr).TotalPrice != "2020000000000000000" {
		t.Fatalf("total price: %d %s", rr.Code, rr.Body)
	}

	if _, err := e.wallet.Deposit(context.Background(), buyer, eth.MustParseUnits("5")); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	rr = e.do(http.MethodPost, "/items/1/purchase", `{"payment":"2020000000000000000"}`, buyer)
	if rr.Code != http.StatusOK {
		t.Fatalf("purchase: expected 200, got %d: %s", rr.Code, rr.Body)
	}
	receipt := decode[ReceiptResponse](t, rr)
	if !receipt.Item.Sold || receipt.Item.Buyer != buyer.String() || receipt.Fee != "20000000000000000" || receipt.Excess != "0" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}

	rr = e.do(http.MethodPost, "/items/1/purchase", `{"payment":"2020000000000000000"}`, buyer)
	if rr.Code != http.StatusConflict {
		t.Fatalf("second purchase: expected 409, got %d", rr.Code)
	}

	rr = e.do(http.MethodGet, "/ledger", "", "")
	ledger := decode[LedgerResponse](t, rr)
	if ledger.ItemCount != 1 || ledger.FeePercent != 1 || ledger.Address != market.String() {
		t.Fatalf("unexpected ledger: %+v", ledger)
	}
}

func TestPurchase_Errors(t *testing.T) {
	e := newEnv(t)
	e.listAt(t, twoEth)
	if _, err := e.wallet.Deposit(context.Background(), buyer, eth.MustParseUnits("1")); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	tests := []struct {
		name   string
		target string
		body   string
		caller identity.Address
		want   int
	}{
		{"no caller", "/items/1/purchase", `{"payment":"1"}`, "", http.StatusUnauthorized},
		{"id zero", "/items/0/purchase", `{"payment":"1"}`, buyer, http.StatusNotFound},
		{"id past count", "/items/2/purchase", `{"payment":"1"}`, buyer, http.StatusNotFound},
		{"id not a number", "/items/abc/purchase", `{"payment":"1"}`, buyer, http.StatusNotFound},
		{"payment below total", "/items/1/purchase", `{"payment":"2019999999999999999"}`, buyer, http.StatusPaymentRequired},
		{"fractional payment", "/items/1/purchase", `{"payment":"1.5"}`, buyer, http.StatusUnprocessableEntity},
		{"missing payment", "/items/1/purchase", `{}`, buyer, http.StatusUnprocessableEntity},
		{"buyer cannot fund payment", "/items/1/purchase", `{"payment":"2020000000000000000"}`, buyer, http.StatusPaymentRequired},
		{"scientific payment", "/items/1/purchase", `{"payment":"1e50000000"}`, buyer, http.StatusUnprocessableEntity},
		{"payment past 78 digits", "/items/1/purchase", `{"payment":"` + strings.Repeat("9", 79) + `"}`, buyer, http.StatusUnprocessableEntity},
		{"custody account buyer", "/items/1/purchase", `{"payment":"2020000000000000000"}`, market, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := e.do(http.MethodPost, tt.target, tt.body, tt.caller); rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body)
			}
		})
	}
}

func TestListItem_Errors(t *testing.T) {
	e := newEnv(t)
	tokenID := e.mint(t, seller)
	unapproved, err := e.registry.Mint(context.Background(), buyer, "ipfs://meta/2.json")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	tests := []struct {
		name   string
		body   string
		caller identity.Address
		want   int
	}{
		{"zero price", fmt.Sprintf(`{"token_id":%d,"price":"0"}`, tokenID), seller, http.StatusUnprocessableEntity},
		{"fractional price", fmt.Sprintf(`{"token_id":%d,"price":"0.5"}`, tokenID), seller, http.StatusUnprocessableEntity},
		{"not owner", fmt.Sprintf(`{"token_id":%d,"price":"10"}`, tokenID), buyer, http.StatusForbidden},
		{"not approved", fmt.Sprintf(`{"token_id":%d,"price":"10"}`, unapproved.TokenID), buyer, http.StatusForbidden},
		{"bad contract", fmt.Sprintf(`{"contract":"0x12","token_id":%d,"price":"10"}`, tokenID), seller, http.StatusUnprocessableEntity},
		{"malformed json", `{"token_id":`, seller, http.StatusBadRequest},
		{"scientific price", fmt.Sprintf(`{"token_id":%d,"price":"1e50000000"}`, tokenID), seller, http.StatusUnprocessableEntity},
		{"exponent price", fmt.Sprintf(`{"token_id":%d,"price":"2e18"}`, tokenID), seller, http.StatusUnprocessableEntity},
		{"custody account seller", fmt.Sprintf(`{"token_id":%d,"price":"10"}`, tokenID), market, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := e.do(http.MethodPost, "/items", tt.body, tt.caller); rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body)
			}
		})
	}
	if rr := e.do(http.MethodGet, "/ledger", "", ""); decode[LedgerResponse](t, rr).ItemCount != 0 {
		t.Fatal("rejected listings must not create items")
	}
}

func TestGetItems_Paging(t *testing.T) {
	e := newEnv(t)
	for range 3 {
		e.listAt(t, "100")
	}
	if _, err := e.wallet.Deposit(context.Background(), buyer, eth.MustParseUnits("1")); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if rr := e.do(http.MethodPost, "/items/1/purchase", `{"payment":"101"}`, buyer); rr.Code != http.StatusOK {
		t.Fatalf("purchase: %d %s", rr.Code, rr.Body)
	}

	rr := e.do(http.MethodGet, "/items?limit=2&offset=0", "", "")
	page := decode[ItemListResponse](t, rr)
	if page.Total != 3 || len(page.Items) != 2 || page.Limit != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}

	rr = e.do(http.MethodGet, "/items?unsold=true", "", "")
	page = decode[ItemListResponse](t, rr)
	if page.Total != 2 || page.Items[0].ID != 2 {
		t.Fatalf("unexpected unsold page: %+v", page)
	}

	for _, q := range []string{"limit=0", "limit=101", "offset=-1", "unsold=maybe"} {
		if rr := e.do(http.MethodGet, "/items?"+q, "", ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rr.Code)
		}
	}
	if rr := e.do(http.MethodGet, "/items/9", "", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown item: expected 404, got %d", rr.Code)
	}
}

func TestPurchaseAsync(t *testing.T) {
	e := newEnv(t)
	e.listAt(t, twoEth)

	rr := e.do(http.MethodPost, "/items/1/purchase/async", `{"payment":"2020000000000000000"}`, buyer)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body)
	}
	accepted := decode[SettlementAccepted](t, rr)
	want := workflows.PurchaseInput{ItemID: 1, Payment: "2020000000000000000", Buyer: buyer.String()}
	if len(e.settlements.started) != 1 || e.settlements.started[0] != want {
		t.Fatalf("unexpected workflow input: %+v", e.settlements.started)
	}

	rr = e.do(http.MethodGet, "/settlements/"+accepted.WorkflowID, "", "")
	if rr.Code != http.StatusOK || decode[workflows.Settlement](t, rr).Status != workflows.StatusPending {
		t.Fatalf("status: %d %s", rr.Code, rr.Body)
	}
	if rr := e.do(http.MethodGet, "/settlements/unknown", "", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown settlement: expected 404, got %d", rr.Code)
	}
	if rr := e.do(http.MethodPost, "/items/1/purchase/async", `{"payment":"2020000000000000000"}`, ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("no caller: expected 401, got %d", rr.Code)
	}
}
