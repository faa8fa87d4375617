package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/omnik-labs/marketplace/pkg/database"
	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/logger"
	"github.com/omnik-labs/marketplace/pkg/money"
	"github.com/omnik-labs/marketplace/pkg/telemetry"
	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
	domainevents "github.com/omnik-labs/marketplace/services/market/domain/events"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
	"github.com/omnik-labs/marketplace/services/market/domain/repositories"
	domainsvcs "github.com/omnik-labs/marketplace/services/market/domain/services"
	walletdomain "github.com/omnik-labs/marketplace/services/wallet/domain"
)

const (
	opList     = "list"
	opPurchase = "purchase"
)

// LedgerDeps are the collaborators of a LedgerService. Metrics and Cache are optional.
type LedgerDeps struct {
	Tx        database.Transactor
	Ledger    repositories.LedgerRepository
	Items     repositories.ItemRepository
	Assets    AssetRegistry
	Funds     Funds
	Publisher EventPublisher
	Cache     ItemCache
	Metrics   *telemetry.LedgerMetrics
	Logger    logger.Logger
}

// LedgerService is the marketplace ledger. It takes custody of listed assets
// and settles purchases: buyer pays price plus fee, the seller receives the
// price, the fee recipient the fee, and the asset moves to the buyer. Each
// operation is one transaction and either fully happens or leaves no trace.
type LedgerService struct {
	LedgerDeps
	cfg    models.LedgerConfig
	tracer trace.Tracer
	now    func() time.Time
}

// NewLedgerService returns a LedgerService for cfg. Call Init before use.
func NewLedgerService(cfg models.LedgerConfig, deps LedgerDeps) *LedgerService {
	return &LedgerService{
		LedgerDeps: deps,
		cfg:        cfg,
		tracer:     otel.Tracer("github.com/omnik-labs/marketplace/services/market"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Init records the ledger configuration on first start and verifies it on
// every later start. Fee recipient, fee percent and custody address never change.
func (s *LedgerService) Init(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	var stored models.LedgerConfig
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.Ledger.EnsureConfig(ctx, s.cfg)
		return err
	})
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	if stored != s.cfg {
		return fmt.Errorf("%w: recorded address=%s fee_recipient=%s fee_percent=%d",
			marketdomain.ErrLedgerConfigMismatch, stored.Address, stored.FeeRecipient, stored.FeePercent)
	}
	return nil
}

// Config returns the ledger configuration.
func (s *LedgerService) Config() models.LedgerConfig {
	return s.cfg
}

// ItemCount returns the number of items ever listed. Valid ids are 1..ItemCount.
func (s *LedgerService) ItemCount(ctx context.Context) (int64, error) {
	n, err := s.Ledger.ItemCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("item count: %w", err)
	}
	return n, nil
}

// List takes custody of asset from caller and offers it at price.
func (s *LedgerService) List(ctx context.Context, asset models.AssetRef, price decimal.Decimal, caller identity.Address) (item *models.Item, err error) {
	ctx, span := s.tracer.Start(ctx, "LedgerService.List", trace.WithAttributes(
		attribute.String("asset", asset.String()),
		attribute.String("seller", caller.String()),
	))
	defer func() { s.finish(ctx, span, opList, err) }()

	if err := domainsvcs.ValidatePrice(price); err != nil {
		return nil, err
	}
	if caller == s.cfg.Address {
		return nil, fmt.Errorf("%w: %s", marketdomain.ErrCustodyAccount, caller)
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.Assets.Transfer(ctx, asset.Contract, asset.TokenID, caller, s.cfg.Address, s.cfg.Address); err != nil {
			return fmt.Errorf("%w: %w", marketdomain.ErrTransferRejected, err)
		}
		id, err := s.Ledger.NextItemID(ctx)
		if err != nil {
			return err
		}
		item = models.NewItem(id, asset, price, caller, s.now())
		if err := s.Items.Insert(ctx, item); err != nil {
			return err
		}
		return s.Publisher.Publish(ctx, domainevents.NewOffered(item))
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", asset, err)
	}

	span.SetAttributes(attribute.Int64("item_id", item.ID))
	if s.Metrics != nil {
		s.Metrics.Listed(ctx)
	}
	s.cacheItem(ctx, item)
	s.Logger.InfoContext(ctx, "item listed",
		"item_id", item.ID, "asset", asset.String(), "price", price.String(), "seller", caller)
	return item, nil
}

// TotalPrice returns price plus fee for item id.
func (s *LedgerService) TotalPrice(ctx context.Context, id int64) (decimal.Decimal, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return domainsvcs.Total(item.Price, s.cfg.FeePercent), nil
}

// Quote returns fee and total for item.
func (s *LedgerService) Quote(item *models.Item) (fee, total decimal.Decimal) {
	fee = domainsvcs.Fee(item.Price, s.cfg.FeePercent)
	return fee, item.Price.Add(fee)
}

// Purchase settles item id for buyer, who pays payment. The checks run in a
// fixed order (id, sold, payment) and the first failure is returned. Payment
// above the total is accepted and the excess stays with the ledger account.
func (s *LedgerService) Purchase(ctx context.Context, id int64, payment decimal.Decimal, buyer identity.Address) (receipt *models.Receipt, err error) {
	ctx, span := s.tracer.Start(ctx, "LedgerService.Purchase", trace.WithAttributes(
		attribute.Int64("item_id", id),
		attribute.String("buyer", buyer.String()),
	))
	defer func() { s.finish(ctx, span, opPurchase, err) }()

	if id < 1 {
		return nil, fmt.Errorf("%w: %d", marketdomain.ErrInvalidItemID, id)
	}
	if buyer == s.cfg.Address {
		return nil, fmt.Errorf("%w: %s", marketdomain.ErrCustodyAccount, buyer)
	}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		item, err := s.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domainsvcs.CheckPurchase(item, payment, s.cfg.FeePercent); err != nil {
			return err
		}

		fee, total := s.Quote(item)
		receipt = &models.Receipt{
			Item:   item,
			Price:  item.Price,
			Fee:    fee,
			Total:  total,
			Paid:   payment,
			Excess: payment.Sub(total),
		}

		item.MarkSold(buyer, s.now())
		item.SaleRef = SaleRefFromCtx(ctx)
		if err := s.Items.MarkSold(ctx, item); err != nil {
			return err
		}
		if err := s.settle(ctx, []movement{
			{account: buyer, amount: payment, debit: true},
			{account: item.Seller, amount: item.Price},
			{account: s.cfg.FeeRecipient, amount: fee},
			{account: s.cfg.Address, amount: receipt.Excess},
		}); err != nil {
			return err
		}
		if err := s.Assets.Transfer(ctx, item.Asset.Contract, item.Asset.TokenID, s.cfg.Address, buyer, s.cfg.Address); err != nil {
			return fmt.Errorf("%w: %w", marketdomain.ErrTransferRejected, err)
		}
		return s.Publisher.Publish(ctx, domainevents.NewBought(receipt))
	})
	if err != nil {
		return nil, fmt.Errorf("purchase item %d: %w", id, err)
	}

	if s.Metrics != nil {
		s.Metrics.Settled(ctx, receipt.Price, receipt.Fee)
	}
	s.cacheItem(ctx, receipt.Item)
	s.Logger.InfoContext(ctx, "item sold",
		"item_id", id, "buyer", buyer, "seller", receipt.Item.Seller,
		"price", receipt.Price.String(), "fee", receipt.Fee.String(), "excess", receipt.Excess.String())
	return receipt, nil
}

// GetItem returns item id, sold or not. Reads go through the cache when one is configured.
func (s *LedgerService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: %d", marketdomain.ErrInvalidItemID, id)
	}
	if s.Cache != nil {
		item, err := s.Cache.Get(ctx, id)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.Logger.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		}
	}

	item, err := s.ReadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheItem(ctx, item)
	return item, nil
}

// ReadItem returns item id from the store, skipping the cache. The cache does
// not carry SaleRef.
func (s *LedgerService) ReadItem(ctx context.Context, id int64) (*models.Item, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: %d", marketdomain.ErrInvalidItemID, id)
	}
	return s.Items.Get(ctx, id)
}

// ListItems returns a page of items ordered by id, plus the total matching count.
func (s *LedgerService) ListItems(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	items, total, err := s.Items.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}

// movement is one balance change of a purchase.
type movement struct {
	account identity.Address
	amount  decimal.Decimal
	debit   bool
}

// settle applies moves in ascending account order so that concurrent purchases
// lock balance rows in the same order. Moves on the same account keep their
// relative order, so a buyer who is also the seller is debited first.
func (s *LedgerService) settle(ctx context.Context, moves []movement) error {
	slices.SortStableFunc(moves, func(a, b movement) int {
		return strings.Compare(a.account.String(), b.account.String())
	})
	for _, m := range moves {
		apply := s.Funds.Credit
		if m.debit {
			apply = s.Funds.Debit
		}
		if err := apply(ctx, m.account, m.amount); err != nil {
			return err
		}
	}
	return nil
}

func (s *LedgerService) cacheItem(ctx context.Context, item *models.Item) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Put(context.WithoutCancel(ctx), item, s.cfg.FeePercent); err != nil {
		s.Logger.WarnContext(ctx, "item cache write failed", "item_id", item.ID, "error", err)
	}
}

func (s *LedgerService) finish(ctx context.Context, span trace.Span, op string, err error) {
	defer span.End()
	if err == nil {
		return
	}
	reason := RejectionReason(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	if s.Metrics != nil {
		s.Metrics.Rejected(ctx, op, reason)
	}
	if reason == "internal" {
		s.Logger.ErrorContext(ctx, "ledger operation failed", "operation", op, "error", err)
		telemetry.CaptureLedgerError(ctx, op, err)
		return
	}
	s.Logger.InfoContext(ctx, "ledger operation rejected", "operation", op, "reason", reason, "error", err)
}

// RejectionReason returns a stable label for a ledger error.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, marketdomain.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, marketdomain.ErrInvalidItemID):
		return "invalid_item_id"
	case errors.Is(err, marketdomain.ErrAlreadySold):
		return "already_sold"
	case errors.Is(err, marketdomain.ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, marketdomain.ErrTransferRejected):
		return "transfer_rejected"
	case errors.Is(err, marketdomain.ErrCustodyAccount):
		return "custody_account"
	case errors.Is(err, walletdomain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, walletdomain.ErrInvalidAmount), errors.Is(err, money.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "internal"
	}
}
