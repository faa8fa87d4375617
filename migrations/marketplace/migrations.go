// Package marketplace embeds the schema of the market, asset and wallet contexts.
// The three contexts share one database so a purchase commits as a single transaction.
package marketplace

import "embed"

//go:embed *.sql
var FS embed.FS
