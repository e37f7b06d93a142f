package placement

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/livekart/orderflow/internal/core/domain"
)

// deriveWindow is the time bucket used when the client supplies no
// idempotency key. Two identical submissions inside the same bucket are
// treated as one logical request; this is what absorbs checkout double-clicks
// and retry-after-timeout from clients that never adopted explicit keys.
const deriveWindow = 5 * time.Minute

// deriveKey builds a deterministic idempotency key from the requester, the
// ordered item list and the current time bucket.
func deriveKey(userID string, items []domain.RequestedItem, now time.Time) string {
	var b strings.Builder
	b.WriteString(userID)
	for _, it := range items {
		fmt.Fprintf(&b, "|%s:%d", it.ProductID, it.Quantity)
	}
	fmt.Fprintf(&b, "|%d", now.UTC().Truncate(deriveWindow).Unix())

	sum := sha256.Sum256([]byte(b.String()))
	return "derived-" + hex.EncodeToString(sum[:])
}
