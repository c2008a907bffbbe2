package ops

import (
	"context"

	"github.com/sealbox/sealbox/internal/capsule"
	"github.com/sealbox/sealbox/internal/db"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Credential string
	Sort       string // "field,direction", e.g. "createdAt,desc"
	Page       int    // 1-based; values below 1 are treated as 1
	PageSize   int    // clamped to MaxPageSize
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []capsule.View `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// List returns one page of all non-deleted capsules. It is an
// administrative operation: the credential is validated before the store is
// touched. Views are projected at a single sampled instant, so unlocked
// capsules in the page include their content.
func (s *Service) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if err := s.gate.Validate(input.Credential); err != nil {
		return nil, err
	}

	page := max(input.Page, 1)
	size := input.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	field, dir := resolveSort(input.Sort)

	items, total, err := db.ListActive(ctx, s.db, field, dir, size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().Unix()
	views := make([]capsule.View, len(items))
	for i := range items {
		views[i] = items[i].Project(now, true)
	}

	return &ListOutput{
		Items: views,
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    size,
			TotalItems:  total,
			TotalPages:  (total + size - 1) / size,
		},
	}, nil
}
