package domain

import "errors"

// Sentinel errors for the marketplace ledger. Use errors.Is() to check these.
// Every failing ledger operation returns one of them and leaves no state change.
var (
	// ErrInvalidPrice indicates a listing price that is not a positive whole number of base units.
	ErrInvalidPrice = errors.New("price must be greater than zero")

	// ErrInvalidItemID indicates an item id outside 1..ItemCount.
	ErrInvalidItemID = errors.New("not a valid item id")

	// ErrAlreadySold indicates a purchase of an item that has been sold.
	ErrAlreadySold = errors.New("item has already been sold")

	// ErrInsufficientPayment indicates a payment below the item's total price.
	ErrInsufficientPayment = errors.New("payment does not cover the total price")

	// ErrTransferRejected indicates the asset registry refused a custody transfer.
	// The registry's own error is wrapped alongside it.
	ErrTransferRejected = errors.New("asset transfer rejected")

	// ErrInvalidFeePercent indicates a fee percent outside 0..100.
	ErrInvalidFeePercent = errors.New("fee percent must be between 0 and 100")

	// ErrLedgerConfigMismatch indicates a start-up configuration that differs from
	// the one recorded when the ledger was created.
	ErrLedgerConfigMismatch = errors.New("ledger configuration differs from the recorded one")

	// ErrCustodyAccount indicates the ledger's own custody address acting as seller or buyer.
	ErrCustodyAccount = errors.New("the ledger custody account cannot list or buy")

	// ErrSettlementNotFound indicates an unknown asynchronous settlement id.
	ErrSettlementNotFound = errors.New("settlement not found")
)
