package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/omnik-labs/marketplace/pkg/auth"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/memtx"
	"github.com/omnik-labs/marketplace/pkg/money"
	appsvcs "github.com/omnik-labs/marketplace/services/wallet/application/services"
)

var (
	eth   = money.Currency{Symbol: "ETH", Decimals: 18}
	alice = identity.MustParseAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	// custody is the ledger's own account.
	custody = identity.MustParseAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
)

func newRouter() (chi.Router, sessions.Store) {
	svcs := appsvcs.NewInMemory(memtx.New(nil), logger.Discard())
	store := sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
	session := NewSessionHandler(store, logger.Discard(), custody)

	r := chi.NewRouter()
	r.Post("/session", session.Connect)
	r.Delete("/session", session.Disconnect)
	r.Get("/wallets/{address}", NewGetBalanceHandler(svcs, eth).Execute)
	r.With(auth.RequireAuth(store, logger.Discard())).Post("/wallets/faucet", NewPostFaucetHandler(svcs, eth).Execute)
	return r, store
}

func do(r http.Handler, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSession_ConnectThenFaucetThenBalance(t *testing.T) {
	r, _ := newRouter()

	rr := do(r, http.MethodPost, "/session", `{"address":"`+alice.String()+`"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("connect: expected 200, got %d: %s", rr.Code, rr.Body)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("connect must set a session cookie")
	}

	rr = do(r, http.MethodPost, "/wallets/faucet", `{"amount":"2.5"}`, cookies)
	if rr.Code != http.StatusOK {
		t.Fatalf("faucet: expected 200, got %d: %s", rr.Code, rr.Body)
	}

	rr = do(r, http.MethodGet, "/wallets/"+alice.String(), "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("balance: expected 200, got %d: %s", rr.Code, rr.Body)
	}
	var resp BalanceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balance != "2500000000000000000" || resp.Display != "2.5 ETH" {
		t.Fatalf("unexpected balance: %+v", resp)
	}
}

func TestSession_Errors(t *testing.T) {
	r, _ := newRouter()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"malformed json", http.MethodPost, "/session", `{`, http.StatusBadRequest},
		{"bad address", http.MethodPost, "/session", `{"address":"0x123"}`, http.StatusUnprocessableEntity},
		{"custody address", http.MethodPost, "/session", `{"address":"` + custody.String() + `"}`, http.StatusForbidden},
		{"custody address upper case", http.MethodPost, "/session", `{"address":"0x5FBDB2315678AFECB367F032D93F642F64180AA3"}`, http.StatusForbidden},
		{"faucet without session", http.MethodPost, "/wallets/faucet", `{"amount":"1"}`, http.StatusUnauthorized},
		{"balance of bad address", http.MethodGet, "/wallets/nope", "", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(r, tt.method, tt.target, tt.body, nil); rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body)
			}
		})
	}
}

func TestFaucet_RejectsBadAmounts(t *testing.T) {
	r, _ := newRouter()
	cookies := do(r, http.MethodPost, "/session", `{"address":"`+alice.String()+`"}`, nil).Result().Cookies()

	for _, body := range []string{`{"amount":"abc"}`, `{"amount":"-1"}`, `{"amount":"0.0000000000000000001"}`, `{"amount":"1e50000000"}`} {
		if rr := do(r, http.MethodPost, "/wallets/faucet", body, cookies); rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d: %s", body, rr.Code, rr.Body)
		}
	}
}

func TestSession_DisconnectEndsSession(t *testing.T) {
	r, _ := newRouter()
	cookies := do(r, http.MethodPost, "/session", `{"address":"`+alice.String()+`"}`, nil).Result().Cookies()

	rr := do(r, http.MethodDelete, "/session", "", cookies)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr := do(r, http.MethodPost, "/wallets/faucet", `{"amount":"1"}`, rr.Result().Cookies()); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after disconnect, got %d", rr.Code)
	}
}

func TestSession_CustodyAddressGetsNoCookie(t *testing.T) {
	r, _ := newRouter()
	rr := do(r, http.MethodPost, "/session", `{"address":"`+custody.String()+`"}`, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("refused connect must not set a session cookie")
	}
	if rr := do(r, http.MethodPost, "/wallets/faucet", `{"amount":"1"}`, rr.Result().Cookies()); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
