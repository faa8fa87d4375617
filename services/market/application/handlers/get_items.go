package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/omnik-labs/marketplace/pkg/errhttp"
	"github.com/omnik-labs/marketplace/pkg/httpx"
	"github.com/omnik-labs/marketplace/pkg/money"
	appsvcs "github.com/omnik-labs/marketplace/services/market/application/services"
	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
	"github.com/omnik-labs/marketplace/services/market/domain/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ItemListResponse is one page of ledger items.
type ItemListResponse struct {
	Items  []ItemResponse `json:"items"`
	Total  int            `json:"total"  example:"42"`
	Limit  int            `json:"limit"  example:"20"`
	Offset int            `json:"offset" example:"0"`
} // @name ItemListResponse

// GetItemsHandler handles GET /items.
type GetItemsHandler struct {
	svc      *appsvcs.Services
	currency money.Currency
}

// NewGetItemsHandler returns a GetItemsHandler.
func NewGetItemsHandler(svc *appsvcs.Services, currency money.Currency) *GetItemsHandler {
	return &GetItemsHandler{svc: svc, currency: currency}
}

// Execute lists items by id.
//
//	@Summary	List items
//	@Tags		market
//	@Produce	json
//	@Param		limit	query		int		false	"Page size (max 100)"	default(20)
//	@Param		offset	query		int		false	"Items to skip"			default(0)
//	@Param		unsold	query		bool	false	"Only items still for sale"
//	@Success	200		{object}	ItemListResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Router		/items [get]
func (h *GetItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	opts, err := parseQueryOpts(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, total, err := h.svc.Ledger.ListItems(r.Context(), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	resp := ItemListResponse{Items: make([]ItemResponse, 0, len(items)), Total: total, Limit: opts.Limit, Offset: opts.Offset}
	for _, item := range items {
		resp.Items = append(resp.Items, newItemResponse(h.svc, item, h.currency))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func parseQueryOpts(r *http.Request) (repositories.QueryOpts, error) {
	q := r.URL.Query()
	opts := repositories.QueryOpts{Limit: defaultPageSize}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			return opts, fmt.Errorf("limit must be between 1 and %d", maxPageSize)
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("offset must be a non-negative integer")
		}
		opts.Offset = n
	}
	if v := q.Get("unsold"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("unsold must be a boolean")
		}
		opts.UnsoldOnly = b
	}
	return opts, nil
}

// itemID reads the {id} path parameter. Anything that is not an integer is an unknown item.
func itemID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", marketdomain.ErrInvalidItemID, raw)
	}
	return id, nil
}
