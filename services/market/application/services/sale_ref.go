package services

import "context"

type saleRefKey struct{}

// WithSaleRef tags ctx so that a Purchase run under it records ref on the sold item.
// A retried request can then recognize a sale it made itself.
func WithSaleRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, saleRefKey{}, ref)
}

// SaleRefFromCtx returns the ref set by WithSaleRef, or "".
func SaleRefFromCtx(ctx context.Context) string {
	ref, _ := ctx.Value(saleRefKey{}).(string)
	return ref
}
