package capsule

import (
	"math/rand/v2"
	"regexp"
)

// CodeAlphabet is the symbol set capsule codes are drawn from.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed length of a capsule code.
const CodeLength = 8

var codePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// ValidCode reports whether code is exactly 8 characters from the alphabet.
// Checked before any store lookup.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// CodeSource produces candidate capsule codes. Injectable so tests can
// supply a deterministic or always-colliding source.
type CodeSource interface {
	Generate() string
}

// RandSource draws codes uniformly from CodeAlphabet using the shared
// top-level math/rand source, which is safe for concurrent callers.
// Collision resistance, not unguessability, is the goal here; 36^8
// combinations make accidental collisions operationally negligible.
type RandSource struct{}

func (RandSource) Generate() string {
	b := make([]byte, CodeLength)
	for i := range b {
		b[i] = CodeAlphabet[rand.IntN(len(CodeAlphabet))]
	}
	return string(b)
}
