package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs carry a millisecond timestamp prefix
// and random entropy, so feed ids within the same millisecond still sort in a
// stable lexicographic order — the tiebreak the feed range key relies on.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
