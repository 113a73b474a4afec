package internal

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	opaquePrefixLen = 25
	base62Alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewOpaqueToken builds the refresh-token string handed to clients: a
// 25-character crypto-random base62 prefix concatenated with a UUID. The
// UUID suffix guarantees ledger-key uniqueness even in the unlikely event
// of a prefix collision.
func NewOpaqueToken() (string, error) {
	var b strings.Builder
	b.Grow(opaquePrefixLen + 36)

	max := big.NewInt(int64(len(base62Alphabet)))
	for i := 0; i < opaquePrefixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("opaque token generation: %w", err)
		}
		b.WriteByte(base62Alphabet[n.Int64()])
	}

	b.WriteString(uuid.NewString())
	return b.String(), nil
}
