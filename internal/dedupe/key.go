// ABOUTME: Content keys for raw frames using blake3
// ABOUTME: Byte-identical frames share a key; any difference yields a new one

package dedupe

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Key returns the hex blake3 digest of a raw frame.
func Key(raw []byte) string {
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
