package transform

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"github.com/bytedance/sonic"
	"github.com/ougirez/pricelist/internal/domain"
	"io"
)

// Hash digests the serialized items followed by the tenant id. Items are
// streamed, so cost grows linearly with no size cut-off.
func Hash(ctx context.Context, items []domain.TransformedItem, tenantID string) (string, error) {
	h := sha256.New()
	enc := sonic.ConfigStd.NewEncoder(h)

	for i := range items {
		if i%yieldEvery == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		if err := enc.Encode(items[i]); err != nil {
			return "", fmt.Errorf("encode item %d: %w", i, err)
		}
	}

	if _, err := io.WriteString(h, tenantID); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
