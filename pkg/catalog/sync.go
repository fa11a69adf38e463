package catalog

import (
	"context"
	"fmt"
)

// Replacer is a writable backend that can take a full copy of a catalog.
type Replacer interface {
	Replace(ctx context.Context, chars []Character, cats []Category) error
}

// Sync copies every character and category from src into dst and returns
// the number of characters written.
func Sync(ctx context.Context, dst Replacer, src Source) (int, error) {
	chars, cats, err := fetchAll(ctx, src)
	if err != nil {
		return 0, fmt.Errorf("sync: read source: %w", err)
	}
	if err := dst.Replace(ctx, chars, cats); err != nil {
		return 0, fmt.Errorf("sync: write: %w", err)
	}
	return len(chars), nil
}
