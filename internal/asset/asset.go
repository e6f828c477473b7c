// Package asset holds the identifiers of tradeable assets and the quote-symbol
// mapping that tells which two assets a quote converts between.
package asset

import (
	"strings"
)

// Symbol identifies an asset (e.g. "ETH", "USDT"). It is the node identity in
// the conversion graph.
type Symbol string

// String returns the raw symbol.
func (s Symbol) String() string {
	return string(s)
}

// Valid reports whether the symbol is non-blank.
func (s Symbol) Valid() bool {
	return strings.TrimSpace(string(s)) != ""
}

// Pair describes what a quote symbol converts: one unit of Base buys
// price units of Other.
type Pair struct {
	Base  Symbol `json:"base"`
	Other Symbol `json:"other"`
}

// NewPair creates a Pair.
func NewPair(base, other Symbol) Pair {
	return Pair{Base: base, Other: other}
}

// Valid reports whether both sides are set.
func (p Pair) Valid() bool {
	return p.Base.Valid() && p.Other.Valid()
}

// String returns "BASE/OTHER".
func (p Pair) String() string {
	return string(p.Base) + "/" + string(p.Other)
}

// Invert returns the reverse conversion pair.
func (p Pair) Invert() Pair {
	return Pair{Base: p.Other, Other: p.Base}
}
