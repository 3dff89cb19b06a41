// Package hash provides hashing utilities.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SHA256 computes the SHA256 hash of data and returns it as a hex string.
func SHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SHA256String computes the SHA256 hash of a string.
func SHA256String(s string) string {
	return SHA256([]byte(s))
}

// SHA256Short returns the first n characters of a SHA256 hash.
func SHA256Short(data []byte, n int) string {
	h := SHA256(data)
	if n > len(h) {
		return h
	}
	return h[:n]
}

// TextKey generates a deterministic cache key for a piece of raw text.
func TextKey(text string) string {
	return SHA256String(text)
}

// EventID generates a deterministic event ID from a topic and sequence number.
func EventID(topic string, seq int64) string {
	return SHA256Short([]byte(fmt.Sprintf("%s:%d", topic, seq)), 16)
}
