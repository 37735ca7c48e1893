// Package gameid mints the identifiers attached to rounds and play sessions.
//
// IDs are UUIDv7 values rendered as 26 lowercase Crockford base32 characters,
// so they sort by creation time and stay short enough for log lines.
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet (no i, l, o, u).
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded ID.
const Length = 26

// Generator produces IDs from an optional entropy source.
type Generator struct {
	entropy io.Reader
}

// NewGenerator returns a generator reading random bits from entropy. A nil
// reader uses crypto/rand via the uuid package.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate returns a new ID using crypto randomness.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate returns a new ID. It panics only if the entropy source fails,
// which for crypto/rand means the process cannot continue anyway.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.entropy != nil {
		id, err = uuid.NewV7FromReader(g.entropy)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("gameid: failed to read entropy: " + err.Error())
	}
	return encode(id)
}

// encode writes the 128-bit value as a 130-bit big-endian number with two
// leading zero bits, five bits per character.
func encode(id uuid.UUID) string {
	var out [Length]byte
	for i := range out {
		var v byte
		for b := i * 5; b < i*5+5; b++ {
			v <<= 1
			if d := b - 2; d >= 0 && id[d/8]&(0x80>>(d%8)) != 0 {
				v |= 1
			}
		}
		out[i] = alphabet[v]
	}
	return string(out[:])
}

// Validate checks that id could have been produced by Generate.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
