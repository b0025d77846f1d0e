// Package lifespan maps a listing's expiration token to an absolute
// deadline.
package lifespan

import "time"

const (
	Token24h   = "24h"
	Token48h   = "48h"
	Token72h   = "72h"
	Token1Week = "1week"
)

// Tokens lists the accepted expiration tokens.
var Tokens = []string{Token24h, Token48h, Token72h, Token1Week}

// Valid reports whether token is one of the accepted expiration tokens.
func Valid(token string) bool {
	switch token {
	case Token24h, Token48h, Token72h, Token1Week:
		return true
	}
	return false
}

// ExpiresAt computes the deadline for token relative to now. Unknown
// tokens fall back to 24 hours rather than failing; create-path
// validation rejects them before this runs.
func ExpiresAt(token string, now time.Time) time.Time {
	switch token {
	case Token48h:
		return now.Add(48 * time.Hour)
	case Token72h:
		return now.Add(72 * time.Hour)
	case Token1Week:
		return now.Add(7 * 24 * time.Hour)
	default:
		return now.Add(24 * time.Hour)
	}
}
