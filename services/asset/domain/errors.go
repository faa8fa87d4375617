package domain

import "errors"

// Sentinel errors for the asset registry. Use errors.Is() to check these.
var (
	// ErrAssetNotFound indicates no token with the given contract and id exists.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrCollectionNotFound indicates the contract is not managed by this registry.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrNotOwner indicates the transfer's from address does not own the token.
	ErrNotOwner = errors.New("not the owner of the asset")

	// ErrNotApproved indicates the operator may not move the owner's tokens.
	ErrNotApproved = errors.New("operator not approved")

	// ErrInvalidRecipient indicates an empty or otherwise unusable recipient.
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrInvalidOperator indicates an owner approving itself, or an empty operator.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrInvalidTokenURI indicates a token URI that violates registry constraints.
	ErrInvalidTokenURI = errors.New("invalid token uri")
)
