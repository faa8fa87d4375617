// Package workflows runs purchases as Temporal workflows so that a client can
// submit a purchase and poll for its settlement instead of holding a request open.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/omnik-labs/marketplace/pkg/identity"
	"github.com/omnik-labs/marketplace/pkg/money"
	"github.com/omnik-labs/marketplace/services/market/application/services"
	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
	"github.com/omnik-labs/marketplace/services/market/domain/models"
)

// PurchaseWorkflowName is the registered name of PurchaseWorkflow.
const PurchaseWorkflowName = "market.Purchase"

// PurchaseInput is the workflow argument. Amounts are base-unit strings.
type PurchaseInput struct {
	ItemID  int64  `json:"item_id"`
	Payment string `json:"payment"`
	Buyer   string `json:"buyer"`
}

// PurchaseResult is the settled receipt.
type PurchaseResult struct {
	ItemID int64  `json:"item_id"`
	Seller string `json:"seller"`
	Buyer  string `json:"buyer"`
	Price  string `json:"price"`
	Fee    string `json:"fee"`
	Total  string `json:"total"`
	Paid   string `json:"paid"`
	Excess string `json:"excess"`
}

// Ledger is the part of the ledger service the activities need.
type Ledger interface {
	Purchase(ctx context.Context, id int64, payment decimal.Decimal, buyer identity.Address) (*models.Receipt, error)
	ReadItem(ctx context.Context, id int64) (*models.Item, error)
	Quote(item *models.Item) (fee, total decimal.Decimal)
}

// Activities settles purchases against the ledger.
type Activities struct {
	Ledger Ledger
}

// Register adds the purchase workflow and its activities to w.
func Register(w worker.Registry, acts *Activities) {
	w.RegisterWorkflowWithOptions(PurchaseWorkflow, workflowOptions())
	w.RegisterActivity(acts)
}

func workflowOptions() workflow.RegisterOptions {
	return workflow.RegisterOptions{Name: PurchaseWorkflowName}
}

// PurchaseWorkflow settles one purchase. Infrastructure failures are retried;
// ledger rejections end the workflow with an ApplicationError whose type is the
// rejection reason.
func PurchaseWorkflow(ctx workflow.Context, in PurchaseInput) (*PurchaseResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	})

	var a *Activities
	var result PurchaseResult
	if err := workflow.ExecuteActivity(ctx, a.SettlePurchase, in).Get(ctx, &result); err != nil {
		workflow.GetLogger(ctx).Info("purchase not settled", "item_id", in.ItemID, "error", err)
		return nil, err
	}
	return &result, nil
}

// SettlePurchase runs one purchase attempt. The sale is tagged with the workflow
// id; a retry after a commit whose acknowledgement was lost finds the item sold
// under that tag and reports success. A sale made by any other request, even by
// the same buyer, stays a rejection.
func (a *Activities) SettlePurchase(ctx context.Context, in PurchaseInput) (*PurchaseResult, error) {
	payment, err := money.ParseBaseUnits(in.Payment)
	if err != nil {
		return nil, rejection(err)
	}
	buyer, err := identity.ParseAddress(in.Buyer)
	if err != nil {
		return nil, rejection(err)
	}

	info := activity.GetInfo(ctx)
	ref := info.WorkflowExecution.ID
	receipt, err := a.Ledger.Purchase(services.WithSaleRef(ctx, ref), in.ItemID, payment, buyer)
	if err == nil {
		return resultFromReceipt(receipt), nil
	}
	if errors.Is(err, marketdomain.ErrAlreadySold) && info.Attempt > 1 {
		item, getErr := a.Ledger.ReadItem(ctx, in.ItemID)
		if getErr == nil && item.Buyer == buyer && item.SaleRef == ref {
			return a.replayed(item, payment), nil
		}
	}
	if services.RejectionReason(err) != "internal" {
		return nil, rejection(err)
	}
	return nil, fmt.Errorf("settle item %d: %w", in.ItemID, err)
}

func (a *Activities) replayed(item *models.Item, payment decimal.Decimal) *PurchaseResult {
	fee, total := a.Ledger.Quote(item)
	return resultFromReceipt(&models.Receipt{
		Item:   item,
		Price:  item.Price,
		Fee:    fee,
		Total:  total,
		Paid:   payment,
		Excess: payment.Sub(total),
	})
}

func rejection(err error) error {
	reason := services.RejectionReason(err)
	if errors.Is(err, money.ErrInvalidAmount) || errors.Is(err, identity.ErrInvalidAddress) {
		reason = "invalid_request"
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), reason, err)
}

func resultFromReceipt(r *models.Receipt) *PurchaseResult {
	return &PurchaseResult{
		ItemID: r.Item.ID,
		Seller: r.Item.Seller.String(),
		Buyer:  r.Item.Buyer.String(),
		Price:  r.Price.String(),
		Fee:    r.Fee.String(),
		Total:  r.Total.String(),
		Paid:   r.Paid.String(),
		Excess: r.Excess.String(),
	}
}
