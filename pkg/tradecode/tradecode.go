// Package tradecode generates the short human-enterable codes a buyer
// types to join a trade.
package tradecode

import (
	"crypto/rand"
	"fmt"
)

// Alphabet excludes I, O, 0 and 1 so codes survive being read aloud or
// copied by hand.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const Length = 6

// Generate returns a 6-character code drawn uniformly from Alphabet.
// Uniqueness is the caller's problem: check against existing codes and
// regenerate on collision.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	code := make([]byte, Length)
	for i, b := range buf {
		code[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(code), nil
}
