package telemetry

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omnik-labs/marketplace/pkg/money"
)

// LedgerMetrics records marketplace ledger activity through the OTel metric API.
// Amounts are exported in display units of the configured currency; settlement
// itself never reads these values.
type LedgerMetrics struct {
	currency   money.Currency
	listings   metric.Int64Counter
	purchases  metric.Int64Counter
	rejections metric.Int64Counter
	volume     metric.Float64Counter
	fees       metric.Float64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter, currency money.Currency) (*LedgerMetrics, error) {
	m := &LedgerMetrics{currency: currency}
	var err error
	if m.listings, err = meter.Int64Counter("market.listings",
		metric.WithDescription("Items listed on the marketplace")); err != nil {
		return nil, fmt.Errorf("listings counter: %w", err)
	}
	if m.purchases, err = meter.Int64Counter("market.purchases",
		metric.WithDescription("Items sold")); err != nil {
		return nil, fmt.Errorf("purchases counter: %w", err)
	}
	if m.rejections, err = meter.Int64Counter("market.rejections",
		metric.WithDescription("Ledger operations rejected, by operation and reason")); err != nil {
		return nil, fmt.Errorf("rejections counter: %w", err)
	}
	if m.volume, err = meter.Float64Counter("market.settled_volume",
		metric.WithDescription("Sum of settled item prices"),
		metric.WithUnit(currency.Symbol)); err != nil {
		return nil, fmt.Errorf("volume counter: %w", err)
	}
	if m.fees, err = meter.Float64Counter("market.fees_collected",
		metric.WithDescription("Sum of platform fees routed to the fee recipient"),
		metric.WithUnit(currency.Symbol)); err != nil {
		return nil, fmt.Errorf("fees counter: %w", err)
	}
	return m, nil
}

// Listed records a successful listing.
func (m *LedgerMetrics) Listed(ctx context.Context) {
	m.listings.Add(ctx, 1)
}

// Settled records a successful purchase with its price and fee in base units.
func (m *LedgerMetrics) Settled(ctx context.Context, price, fee decimal.Decimal) {
	m.purchases.Add(ctx, 1)
	m.volume.Add(ctx, m.display(price))
	m.fees.Add(ctx, m.display(fee))
}

// Rejected records a failed ledger operation. reason is a short stable label such
// as "already_sold".
func (m *LedgerMetrics) Rejected(ctx context.Context, operation, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", reason),
	))
}

func (m *LedgerMetrics) display(v decimal.Decimal) float64 {
	f, _ := v.Shift(-m.currency.Decimals).Float64()
	return f
}
