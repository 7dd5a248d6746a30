package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const orderNumberPrefix = "BLM"

// GenerateOrderNumber builds a human-readable order number from the current
// time plus a 3-digit random suffix. Collisions are possible at high volume;
// the unique index on orders.order_number is the backstop, and callers retry
// once on a duplicate-key error.
func GenerateOrderNumber(now time.Time) string {
	suffix := int64(0)
	if n, err := rand.Int(rand.Reader, big.NewInt(1000)); err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("%s%d%03d", orderNumberPrefix, now.Unix()%1000000000, suffix)
}
