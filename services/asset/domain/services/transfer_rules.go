// Package services contains stateless domain rules for the asset registry.
package services

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/omnik-labs/marketplace/pkg/identity"
	assetdomain "github.com/omnik-labs/marketplace/services/asset/domain"
	"github.com/omnik-labs/marketplace/services/asset/domain/models"
)

// MaxTokenURILength bounds stored metadata pointers.
const MaxTokenURILength = 2048

// CheckTransfer enforces the custody rule for moving asset from one account to
// another: from must own it, and operator must be from or an approved operator.
// approved reports whether operator holds an operator approval from from.
func CheckTransfer(asset *models.Asset, from, to, operator identity.Address, approved bool) error {
	if to.IsZero() {
		return assetdomain.ErrInvalidRecipient
	}
	if asset.Owner != from {
		return fmt.Errorf("%w: %s is owned by %s, not %s", assetdomain.ErrNotOwner, asset.Ref(), asset.Owner, from)
	}
	if operator != from && !approved {
		return fmt.Errorf("%w: %s may not move tokens of %s", assetdomain.ErrNotApproved, operator, from)
	}
	return nil
}

// ValidateTokenURI accepts absolute URIs (ipfs://, https://, ...) without
// whitespace or control characters.
func ValidateTokenURI(uri string) error {
	if uri == "" {
		return fmt.Errorf("%w: empty", assetdomain.ErrInvalidTokenURI)
	}
	if len(uri) > MaxTokenURILength {
		return fmt.Errorf("%w: longer than %d bytes", assetdomain.ErrInvalidTokenURI, MaxTokenURILength)
	}
	if strings.IndexFunc(uri, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return fmt.Errorf("%w: contains whitespace or control characters", assetdomain.ErrInvalidTokenURI)
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("%w: %q is not an absolute uri", assetdomain.ErrInvalidTokenURI, uri)
	}
	return nil
}
