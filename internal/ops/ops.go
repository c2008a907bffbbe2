// Package ops implements the capsule lifecycle engine: creation with
// collision-retried code allocation, time-gated reads, credential-gated
// listing, and soft delete. All durable state lives in the store; the
// Service itself holds no per-request state and takes no locks.
package ops

import (
	"database/sql"
	"strings"

	"github.com/sealbox/sealbox/internal/capsule"
	"github.com/sealbox/sealbox/internal/db"
)

// Pagination limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CreateAttempts bounds the code-collision retry loop in Create.
const CreateAttempts = 10

// Gate validates the opaque admin credential supplied to administrative
// operations.
type Gate interface {
	Validate(credential string) error
}

// Service orchestrates capsule operations. The clock and code source are
// injectable so tests can pin time and force collisions.
type Service struct {
	db    *sql.DB
	gate  Gate
	clock capsule.Clock
	codes capsule.CodeSource
}

// NewService creates a Service. A nil clock or code source falls back to
// the real implementations.
func NewService(database *sql.DB, gate Gate, clock capsule.Clock, codes capsule.CodeSource) *Service {
	if clock == nil {
		clock = capsule.RealClock{}
	}
	if codes == nil {
		codes = capsule.RandSource{}
	}
	return &Service{
		db:    database,
		gate:  gate,
		clock: clock,
		codes: codes,
	}
}

// Pagination contains pagination metadata for list operations.
// CurrentPage is 1-based in the external view.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// resolveSort maps an external "field,direction" spec onto the store's
// allow-list. Unrecognized field names fall back to creation instant
// descending; an unrecognized direction means descending.
func resolveSort(spec string) (db.SortField, db.SortDirection) {
	field, dir, _ := strings.Cut(spec, ",")

	var sortField db.SortField
	switch strings.TrimSpace(field) {
	case "createdAt":
		sortField = db.SortCreatedAt
	case "id":
		sortField = db.SortID
	default:
		return db.SortCreatedAt, db.SortDesc
	}

	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return sortField, db.SortAsc
	}
	return sortField, db.SortDesc
}
