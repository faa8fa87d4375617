package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	appsvcs "github.com/omnik-labs/marketplace/services/asset/application/services"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
)

var (
	alice  = identity.MustParseAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	market = identity.MustParseAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
)

func newRouter() (chi.Router, *appsvcs.Services) {
	svcs := appsvcs.NewInMemory(memtx.New(nil), models.Collection{
		Contract: identity.MustParseAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"),
		Name:     "Omnik NFT",
		Symbol:   "OMNIK",
	}, logger.Discard())

	r := chi.NewRouter()
	r.Get("/assets/approvals", NewGetApprovalHandler(svcs).Execute)
	r.Get("/assets/{tokenId}", NewGetAssetHandler(svcs).Execute)
	r.Post("/assets", NewPostAssetHandler(svcs).Execute)
	r.Put("/assets/approvals", NewPutApprovalHandler(svcs).Execute)
	return r, svcs
}

func do(r http.Handler, method, target, body string, caller identity.Address) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req = req.WithContext(identity.WithCaller(req.Context(), caller))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestPostAsset_MintsToCaller(t *testing.T) {
	r, svcs := newRouter()

	rr := do(r, http.MethodPost, "/assets", `{"token_uri":"ipfs://meta/1.json"}`, alice)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body)
	}
	var resp AssetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TokenID != 1 || resp.Owner != alice.String() {
		t.Fatalf("unexpected response: %+v", resp)
	}
	owner, err := svcs.Registry.OwnerOf(context.Background(), models.Ref{Contract: svcs.Registry.Contract(), TokenID: 1})
	if err != nil || owner != alice {
		t.Fatalf("OwnerOf = %s, %v", owner, err)
	}
}

func TestPostAsset_Errors(t *testing.T) {
	r, _ := newRouter()

	tests := []struct {
		name   string
		body   string
		caller identity.Address
		want   int
	}{
		{"no caller", `{"token_uri":"ipfs://meta/1.json"}`, "", http.StatusUnauthorized},
		{"bad json", `{`, alice, http.StatusBadRequest},
		{"missing uri", `{}`, alice, http.StatusUnprocessableEntity},
		{"relative uri", `{"token_uri":"meta/1.json"}`, alice, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(r, http.MethodPost, "/assets", tt.body, tt.caller); rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body)
			}
		})
	}
}

func TestGetAsset(t *testing.T) {
	r, _ := newRouter()
	do(r, http.MethodPost, "/assets", `{"token_uri":"ipfs://meta/1.json"}`, alice)

	if rr := do(r, http.MethodGet, "/assets/1", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	for _, target := range []string{"/assets/2", "/assets/abc"} {
		if rr := do(r, http.MethodGet, target, "", ""); rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", target, rr.Code)
		}
	}
}

func TestApprovals_PutThenGet(t *testing.T) {
	r, _ := newRouter()

	rr := do(r, http.MethodPut, "/assets/approvals", `{"operator":"`+market.String()+`","approved":true}`, alice)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT: expected 200, got %d: %s", rr.Code, rr.Body)
	}

	rr = do(r, http.MethodGet, "/assets/approvals?owner="+alice.String()+"&operator="+market.String(), "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET: expected 200, got %d", rr.Code)
	}
	var resp ApprovalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Approved {
		t.Fatal("expected approval to be reported")
	}

	if rr := do(r, http.MethodPut, "/assets/approvals", `{"operator":"`+alice.String()+`","approved":true}`, alice); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("self approval: expected 422, got %d", rr.Code)
	}
	if rr := do(r, http.MethodGet, "/assets/approvals?owner=nope&operator="+market.String(), "", ""); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad owner: expected 422, got %d", rr.Code)
	}
}
