package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/omnik-labs/marketplace/pkg/identity"
	assetdomain "github.com/omnik-labs/marketplace/services/asset/domain"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
)

var (
	contract = identity.MustParseAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512")
	owner    = identity.MustParseAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	market   = identity.MustParseAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	stranger = identity.MustParseAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
)

func TestCheckTransfer(t *testing.T) {
	asset := &models.Asset{Contract: contract, TokenID: 1, Owner: owner}

	tests := []struct {
		name     string
		from     identity.Address
		to       identity.Address
		operator identity.Address
		approved bool
		want     error
	}{
		{"owner moves own token", owner, stranger, owner, false, nil},
		{"approved operator", owner, market, market, true, nil},
		{"unapproved operator", owner, market, market, false, assetdomain.ErrNotApproved},
		{"from is not owner", stranger, market, stranger, false, assetdomain.ErrNotOwner},
		{"not owner wins over approval", stranger, market, market, true, assetdomain.ErrNotOwner},
		{"empty recipient", owner, "", owner, false, assetdomain.ErrInvalidRecipient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransfer(asset, tt.from, tt.to, tt.operator, tt.approved)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateTokenURI(t *testing.T) {
	valid := []string{
		"ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		"https://metadata.omnik.dev/tokens/1.json",
	}
	for _, uri := range valid {
		if err := ValidateTokenURI(uri); err != nil {
			t.Errorf("ValidateTokenURI(%q) = %v, want nil", uri, err)
		}
	}

	invalid := []string{
		"",
		"no-scheme/path",
		"ipfs://has space",
		"ipfs://tab\tinside",
		"ipfs://" + strings.Repeat("a", MaxTokenURILength),
	}
	for _, uri := range invalid {
		if err := ValidateTokenURI(uri); !errors.Is(err, assetdomain.ErrInvalidTokenURI) {
			t.Errorf("ValidateTokenURI(%q) = %v, want ErrInvalidTokenURI", uri, err)
		}
	}
}
