package ops

import (
	"context"

	"github.com/sealbox/sealbox/internal/capsule"
	"github.com/sealbox/sealbox/internal/db"
	"github.com/sealbox/sealbox/internal/errors"
)

// Get retrieves the time-gated view of a capsule by its code. Content is
// present iff the open time has passed at the moment of the call; while
// locked the view carries the countdown instead.
func (s *Service) Get(ctx context.Context, code string) (*capsule.View, error) {
	return s.lookup(ctx, code, true)
}

// Status is a metadata-only probe: same lookup and gate computation as Get,
// but content is withheld regardless of unlock state.
func (s *Service) Status(ctx context.Context, code string) (*capsule.View, error) {
	return s.lookup(ctx, code, false)
}

func (s *Service) lookup(ctx context.Context, code string, includeContent bool) (*capsule.View, error) {
	// Shape check comes before any store access
	if !capsule.ValidCode(code) {
		return nil, errors.NewInvalidCode(code)
	}

	c, err := db.GetActiveByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}

	v := c.Project(s.clock.Now().Unix(), includeContent)
	return &v, nil
}
