package random

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Random draws lie positions, session codes and entity ids. Mocked in tests.
type Random interface {
	// Intn returns a uniformly distributed int in [0, n), or 0 when n <= 0
	Intn(n int) int

	// String returns length characters drawn from alphabet
	String(length int, alphabet string) string

	// UUID returns a new random identifier
	UUID() string
}

// CryptoRandom draws from a cryptographic byte source
type CryptoRandom struct {
	src io.Reader
}

// New creates a CryptoRandom backed by crypto/rand
func New() *CryptoRandom {
	return &CryptoRandom{src: rand.Reader}
}

// NewFromReader creates a CryptoRandom that draws its bytes from src
func NewFromReader(src io.Reader) *CryptoRandom {
	return &CryptoRandom{src: src}
}

func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(r.src, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(alphabet[r.Intn(len(alphabet))])
	}
	return b.String()
}

// UUID returns a version 4 UUID. If the source fails, the process-wide
// generator is used instead.
func (r *CryptoRandom) UUID() string {
	id, err := uuid.NewRandomFromReader(r.src)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
