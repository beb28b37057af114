package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeUsesAlphabet(t *testing.T) {
	r := New()
	for range 50 {
		code := r.Code(6)
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(CodeAlphabet, c), "unexpected character %q in %s", c, code)
		}
	}
}

func TestCodeVaries(t *testing.T) {
	r := New()
	assert.NotEqual(t, r.Code(16), r.Code(16))
}

func TestCodeZeroLength(t *testing.T) {
	assert.Empty(t, New().Code(0))
	assert.Empty(t, New().Code(-1))
}
