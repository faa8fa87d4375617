package workflows

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	marketdomain "github.com/omnik-labs/marketplace/services/market/domain"
)

// Settlement states reported by SettlementClient.Status.
const (
	StatusPending  = "pending"
	StatusSettled  = "settled"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// Settlement is the observable state of an async purchase.
type Settlement struct {
	WorkflowID string          `json:"workflow_id"`
	Status     string          `json:"status"`
	Result     *PurchaseResult `json:"result,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// SettlementClient starts purchase workflows and reports their outcome.
type SettlementClient struct {
	client    client.Client
	taskQueue string
	timeout   time.Duration
}

// NewSettlementClient returns a client starting workflows on taskQueue.
func NewSettlementClient(c client.Client, taskQueue string) *SettlementClient {
	return &SettlementClient{client: c, taskQueue: taskQueue, timeout: 5 * time.Minute}
}

// WorkflowID is the id used for a buyer's purchase of an item. A repeated
// submission while the first is still running joins it.
func WorkflowID(in PurchaseInput) string {
	return "purchase-" + strconv.FormatInt(in.ItemID, 10) + "-" + in.Buyer
}

// Start submits a purchase and returns its workflow id.
func (s *SettlementClient) Start(ctx context.Context, in PurchaseInput) (string, error) {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                       WorkflowID(in),
		TaskQueue:                s.taskQueue,
		WorkflowExecutionTimeout: s.timeout,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_USE_EXISTING,
	}, PurchaseWorkflowName, in)
	if err != nil {
		return "", fmt.Errorf("start purchase workflow for item %d: %w", in.ItemID, err)
	}
	return run.GetID(), nil
}

// Status reports the latest run of workflowID. Unknown ids return ErrSettlementNotFound.
func (s *SettlementClient) Status(ctx context.Context, workflowID string) (*Settlement, error) {
	desc, err := s.client.DescribeWorkflowExecution(ctx, workflowID, "")
	if err != nil {
		var notFound *serviceerror.NotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", marketdomain.ErrSettlementNotFound, workflowID)
		}
		return nil, fmt.Errorf("describe workflow %s: %w", workflowID, err)
	}

	st := &Settlement{WorkflowID: workflowID}
	if desc.GetWorkflowExecutionInfo().GetStatus() == enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING {
		st.Status = StatusPending
		return st, nil
	}

	var result PurchaseResult
	err = s.client.GetWorkflow(ctx, workflowID, "").Get(ctx, &result)
	if err == nil {
		st.Status = StatusSettled
		st.Result = &result
		return st, nil
	}

	st.Error = err.Error()
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.NonRetryable() {
		st.Status = StatusRejected
		st.Reason = appErr.Type()
		return st, nil
	}
	st.Status = StatusFailed
	return st, nil
}
