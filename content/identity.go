// Package content normalizes loosely shaped article records into values that
// are safe to render: ids and slugs, author names, image references and
// display dates. Every function here is total and never returns an error.
package content

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// IDLength is the length of tokens produced by IDGenerator.
const IDLength = 12

// IDGenerator produces short opaque ids from a random source.
type IDGenerator struct {
	src io.Reader
}

// NewIDGenerator returns a generator reading from src.
// A nil src falls back to crypto/rand.
func NewIDGenerator(src io.Reader) *IDGenerator {
	if src == nil {
		src = rand.Reader
	}
	return &IDGenerator{src: src}
}

// Generate returns a lowercase hex token of IDLength characters taken from
// the leading bytes of a random (v4) UUID. Those bytes carry no version bits.
func (g *IDGenerator) Generate() string {
	u, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// Source exhausted or broken; crypto/rand still yields a usable id.
		u = uuid.New()
	}
	return hex.EncodeToString(u[:IDLength/2])
}

// MakeSlug builds the canonical slug "<title>-<date digits>-<id>".
// The title is lowercased and reduced to Hangul syllables, ASCII letters,
// ASCII digits and single hyphens. Any input yields output; an empty title
// produces a slug starting with a hyphen.
func MakeSlug(title, dateISO, id string) string {
	title = strings.ToLower(norm.NFC.String(title))

	var kept strings.Builder
	for _, r := range title {
		if isSlugRune(r) || unicode.IsSpace(r) {
			kept.WriteRune(r)
		}
	}
	words := strings.Fields(kept.String())

	var digits strings.Builder
	for _, r := range dateISO {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	return strings.Join(words, "-") + "-" + digits.String() + "-" + id
}

func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return true
	}
	return false
}
