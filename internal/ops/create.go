package ops

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sealbox/sealbox/internal/capsule"
	"github.com/sealbox/sealbox/internal/db"
	"github.com/sealbox/sealbox/internal/errors"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Title           string
	Content         string
	CreatorNickname string
	OpenTime        time.Time
}

// CreateOutput contains the result of the Create operation. It has no
// content field at all: the sealed message is never echoed back to the
// creator.
type CreateOutput struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Title           string `json:"title"`
	CreatorNickname string `json:"creator_nickname"`
	OpenTime        string `json:"open_time"`
	CreatedAt       string `json:"created_at"`
}

// Create seals a new capsule under a freshly allocated code.
//
// The allocation loop is generate → advisory existence check → insert; the
// pre-check only saves wasted inserts, it is the store's unique index that
// decides races. A duplicate-code result from the insert therefore means a
// concurrent writer won the same code, and the loop retries with a new
// candidate, up to CreateAttempts times.
func (s *Service) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	// One sampled instant covers both the open-time assertion and created_at.
	now := s.clock.Now()
	if !input.OpenTime.After(now) {
		return nil, errors.NewInvalidOpenTime()
	}

	for range CreateAttempts {
		code := s.codes.Generate()

		exists, err := db.ExistsActiveByCode(ctx, s.db, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		c := &capsule.Capsule{
			Code:            code,
			Title:           input.Title,
			Content:         input.Content,
			CreatorNickname: input.CreatorNickname,
			OpenTime:        input.OpenTime.Unix(),
			CreatedAt:       now.Unix(),
		}

		err = db.Insert(ctx, s.db, c)
		if errors.Is(err, errors.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &CreateOutput{
			ID:              c.ID,
			Code:            c.Code,
			Title:           c.Title,
			CreatorNickname: c.CreatorNickname,
			OpenTime:        capsule.FormatInstant(c.OpenTime),
			CreatedAt:       capsule.FormatInstant(c.CreatedAt),
		}, nil
	}

	return nil, errors.NewCodeSpaceExhausted(CreateAttempts)
}

func validateCreateInput(input CreateInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return errors.NewValidation("title is required")
	}
	if utf8.RuneCountInString(input.Title) > capsule.MaxTitleChars {
		return errors.NewValidation("title exceeds 100 characters")
	}
	if input.Content == "" {
		return errors.NewValidation("content is required")
	}
	if utf8.RuneCountInString(input.Content) > capsule.MaxContentChars {
		return errors.NewValidation("content exceeds 10000 characters")
	}
	if strings.TrimSpace(input.CreatorNickname) == "" {
		return errors.NewValidation("creator_nickname is required")
	}
	if utf8.RuneCountInString(input.CreatorNickname) > capsule.MaxNicknameChars {
		return errors.NewValidation("creator_nickname exceeds 50 characters")
	}
	if input.OpenTime.IsZero() {
		return errors.NewValidation("open_time is required")
	}
	return nil
}
