// Package util contains small helpers shared by the tsched packages.
package util

import "github.com/OneOfOne/xxhash"

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// separator ends every part, so ("ab", "c") and ("a", "bc") hash differently
var separator = []byte{0xff}

// HashStrings hashes several strings into one xxhash64 value with the given seed.
func HashStrings(seed uint64, parts ...string) uint64 {
	h := xxhash.NewS64(seed)
	for _, s := range parts {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write(separator)
	}
	return h.Sum64()
}
