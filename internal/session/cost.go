package session

import "unicode/utf16"

// DefaultEntryOverhead is the fixed per-entry cost charged against
// the caller's buffer on top of the name, in bytes. It mirrors the
// dominant fixed-size portion of the virtualization layer's directory
// entry record.
const DefaultEntryOverhead = 104

// CostWithOverhead builds the standard accounting formula: a fixed
// overhead plus two bytes per UTF-16 code unit of the encoded name.
func CostWithOverhead(overhead uint64) CostFunc {
	return func(name string) uint64 {
		return overhead + 2*uint64(len(utf16.Encode([]rune(name))))
	}
}

// DefaultCost is CostWithOverhead(DefaultEntryOverhead).
var DefaultCost = CostWithOverhead(DefaultEntryOverhead)
