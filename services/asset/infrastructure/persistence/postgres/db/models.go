package db

import "time"

// Asset is a row of assets.
type Asset struct {
	Contract string
	TokenID  int64
	Owner    string
	TokenURI string
	MintedAt time.Time
}
