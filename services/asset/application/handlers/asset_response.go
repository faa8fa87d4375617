package handlers

import (
	"time"

	"github.com/omnik-labs/marketplace/services/asset/domain/models"
)

// AssetResponse describes one token of the collection.
type AssetResponse struct {
	Contract string    `json:"contract"  example:"0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"`
	TokenID  uint64    `json:"token_id"  example:"1"`
	Owner    string    `json:"owner"     example:"0x70997970c51812dc3a010c7d01b50e0d17dc79c8"`
	TokenURI string    `json:"token_uri" example:"ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"`
	MintedAt time.Time `json:"minted_at" example:"2024-01-15T10:30:00Z"`
} // @name AssetResponse

func newAssetResponse(a *models.Asset) AssetResponse {
	return AssetResponse{
		Contract: a.Contract.String(),
		TokenID:  a.TokenID,
		Owner:    a.Owner.String(),
		TokenURI: a.TokenURI,
		MintedAt: a.MintedAt,
	}
}
