package models

import (
	"fmt"
	"time"

	"github.com/omnik-labs/marketplace/pkg/identity"
)

// Ref identifies one token: the collection contract plus its token id.
type Ref struct {
	Contract identity.Address
	TokenID  uint64
}

// String renders the ref as "contract/tokenID".
func (r Ref) String() string {
	return fmt.Sprintf("%s/%d", r.Contract, r.TokenID)
}

// Collection is a family of non-fungible tokens sharing a contract address.
type Collection struct {
	Contract identity.Address
	Name     string
	Symbol   string
}

// Asset is a minted token. Owner changes only through a registry transfer.
type Asset struct {
	Contract identity.Address
	TokenID  uint64
	Owner    identity.Address
	TokenURI string
	MintedAt time.Time
}

// Ref returns the asset's identity.
func (a *Asset) Ref() Ref {
	return Ref{Contract: a.Contract, TokenID: a.TokenID}
}
