// Package codec converts between the store's native name
// representation and the filesystem's name representation.
//
// Names containing characters that are illegal in filesystem paths
// are filtered: they never appear in listings and can never be
// resolved by path. Names ending in '.' pass through unchanged even
// though platform path normalization may strip the dot and make the
// resulting path miss on lookup; callers tolerate that.
package codec

import "strings"

// DefaultIllegal is the default set of characters that cannot appear
// in a filesystem name: the path separators plus the wildcard and
// reserved characters of the virtualization layer's matching rules.
const DefaultIllegal = `\/:*?"<>|`

// Codec maps store names to filesystem names and back.
type Codec struct {
	illegal string
}

// New returns a Codec rejecting the given character set. An empty set
// selects DefaultIllegal. The set is a protocol constant supplied by
// the virtualization layer's contract.
func New(illegal string) *Codec {
	if illegal == "" {
		illegal = DefaultIllegal
	}
	return &Codec{illegal: illegal}
}

// Encode converts a native store name to its filesystem name. It
// returns ok=false when the name cannot be represented in a path; the
// caller drops such entries silently.
func (c *Codec) Encode(storeName string) (string, bool) {
	if !c.legal(storeName) {
		return "", false
	}
	if strings.HasSuffix(storeName, ".") {
		// The name survives encoding, but a later lookup of the
		// resulting path may miss when the OS strips trailing dots.
		return storeName, true
	}
	return storeName, true
}

// Decode converts a filesystem name back to the store's native name.
func (c *Codec) Decode(fsName string) string {
	return fsName
}

// legal reports whether every character of name may appear in a
// filesystem name.
func (c *Codec) legal(name string) bool {
	if strings.ContainsAny(name, c.illegal) {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 {
			return false
		}
	}
	return true
}
