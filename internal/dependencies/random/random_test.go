package random

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntnStaysInRange(t *testing.T) {
	r := New()
	for i := 0; i < 500; i++ {
		n := r.Intn(3)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 3)
	}
}

func TestIntnNonPositive(t *testing.T) {
	assert.Equal(t, 0, New().Intn(0))
	assert.Equal(t, 0, New().Intn(-4))
}

func TestStringUsesAlphabet(t *testing.T) {
	const alphabet = "ABC123"
	s := New().String(64, alphabet)
	require.Len(t, s, 64)
	for _, ch := range s {
		assert.True(t, strings.ContainsRune(alphabet, ch), "unexpected %q", ch)
	}
	assert.Empty(t, New().String(0, alphabet))
	assert.Empty(t, New().String(5, ""))
}

func TestUUIDParses(t *testing.T) {
	r := New()
	a, b := r.UUID(), r.UUID()
	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFixedSourceIsDeterministic(t *testing.T) {
	r := NewFromReader(bytes.NewReader(make([]byte, 64)))

	assert.Equal(t, 0, r.Intn(3))
	assert.Equal(t, "AAAA", r.String(4, "ABC"))
	assert.Equal(t, "00000000-0000-4000-8000-000000000000", r.UUID())
}

func TestExhaustedSourceFallsBack(t *testing.T) {
	r := NewFromReader(bytes.NewReader(nil))

	assert.Equal(t, 0, r.Intn(10))
	_, err := uuid.Parse(r.UUID())
	assert.NoError(t, err)
}
