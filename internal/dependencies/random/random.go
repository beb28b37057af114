package random

import "crypto/rand"

// CodeAlphabet is the character set of login codes. It leaves out 0, O, 1 and I,
// which are easy to misread on a printed badge.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Random generates login codes. Mocked in tests.
type Random interface {
	// Code returns length characters drawn uniformly from CodeAlphabet
	Code(length int) string
}

// CryptoRandom draws codes from crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Code returns a random login code. Bytes past the last whole multiple of the
// alphabet size are rejected so every character is equally likely.
func (r *CryptoRandom) Code(length int) string {
	if length <= 0 {
		return ""
	}
	n := len(CodeAlphabet)
	limit := 256 - 256%n

	code := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(code) < length {
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, CodeAlphabet[int(b)%n])
			if len(code) == length {
				break
			}
		}
	}
	return string(code)
}
