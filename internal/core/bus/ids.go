// If you are AI: This file generates session identifiers.

package bus

import (
	"math/rand"
)

// sessionIDAlphabet is the character set of session ids.
const sessionIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWKYZ0123456789"

// SessionIDLength is the number of characters in a session id.
const SessionIDLength = 8

// NewSessionID returns a random session id. Uniqueness is checked by the registry.
func NewSessionID() string {
	var b [SessionIDLength]byte
	for i := range b {
		b[i] = sessionIDAlphabet[rand.Intn(len(sessionIDAlphabet))]
	}
	return string(b[:])
}
