package ops

import (
	"context"

	"github.com/sealbox/sealbox/internal/capsule"
	"github.com/sealbox/sealbox/internal/db"
	"github.com/sealbox/sealbox/internal/errors"
)

// DeleteInput contains parameters for the Delete operation. Exactly one of
// Code (preferred) or ID must be set.
type DeleteInput struct {
	Credential string
	Code       string
	ID         string
}

// DeleteOutput is the minimal confirmation of a delete: the code and the
// deletion instant, never the content.
type DeleteOutput struct {
	Code      string `json:"code"`
	DeletedAt string `json:"deleted_at"`
}

// Delete soft-deletes a capsule. Requires a valid admin credential.
// Deletion is a one-way transition: a second delete of the same target
// reports CAPSULE_NOT_FOUND.
func (s *Service) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := s.gate.Validate(input.Credential); err != nil {
		return nil, err
	}

	hasCode := input.Code != ""
	hasID := input.ID != ""
	if hasCode == hasID {
		return nil, errors.NewValidation("specify exactly one of code or id")
	}

	var (
		c   *capsule.Capsule
		err error
	)
	if hasCode {
		if !capsule.ValidCode(input.Code) {
			return nil, errors.NewInvalidCode(input.Code)
		}
		c, err = db.GetActiveByCode(ctx, s.db, input.Code)
	} else {
		c, err = db.GetActiveByID(ctx, s.db, input.ID)
	}
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().Unix()

	// A concurrent delete between the lookup and this update surfaces as
	// not-found, which is the correct report for a repeated delete.
	if err := db.SoftDelete(ctx, s.db, c.ID, now); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Code:      c.Code,
		DeletedAt: capsule.FormatInstant(now),
	}, nil
}
