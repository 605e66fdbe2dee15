package services

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/assessment-console/pkg/apperrors"
)

// pageFetcher returns up to limit records starting at skip.
type pageFetcher[T any] func(ctx context.Context, skip, limit int) ([]T, error)

// collectPages requests pages of pageSize until a page comes back shorter
// than pageSize. When the total is an exact multiple of pageSize the final
// request returns an empty page; callers see ceil(N/pageSize)+1 requests then.
// Any page error aborts the whole collection.
func collectPages[T any](ctx context.Context, pageSize int, fetch pageFetcher[T]) ([]T, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrInvalidPageSize, pageSize)
	}

	all := make([]T, 0, pageSize)
	for skip := 0; ; skip += pageSize {
		page, err := fetch(ctx, skip, pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch page at offset %d: %w", skip, err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}
