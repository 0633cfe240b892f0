// Package dedupe suppresses stream frames replayed by the server after a
// reconnect. Frames are keyed by a blake3 digest of their bytes and
// remembered for a short window.
package dedupe
