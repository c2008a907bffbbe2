package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sealbox/sealbox/internal/capsule"
	"github.com/sealbox/sealbox/internal/errors"
)

// SortField names a column capsules may be ordered by. The allow-list keeps
// caller-supplied sort specs out of the SQL text.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortID        SortField = "id"
)

// SortDirection is the ordering direction for ListActive.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

const capsuleColumns = "id, code, title, content, creator_nickname, open_time, created_at, deleted_at"

// Insert stores a new capsule. The store assigns the surrogate id (a ULID);
// CreatedAt must already carry the operation's sampled instant. Returns
// DUPLICATE_CODE if a non-deleted row already holds the same code. The
// partial unique index enforces this atomically, so two racing inserts for
// one code can never both succeed.
func Insert(ctx context.Context, db *sql.DB, c *capsule.Capsule) error {
	id, err := newID()
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO capsules (id, code, title, content, creator_nickname, open_time, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = db.ExecContext(ctx, query,
		id, c.Code, c.Title, c.Content, c.CreatorNickname, c.OpenTime, c.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewDuplicateCode(c.Code)
		}
		return errors.NewInternal(err)
	}

	c.ID = id
	return nil
}

// newID generates a store-assigned ULID. Lexicographic ULID order tracks
// creation order, which keeps the id tie-break of ListActive stable.
func newID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ExistsActiveByCode reports whether a non-deleted capsule holds the code.
// Advisory only: Insert remains the authority under concurrency.
func ExistsActiveByCode(ctx context.Context, db *sql.DB, code string) (bool, error) {
	query := `SELECT 1 FROM capsules WHERE code = ? AND deleted_at IS NULL LIMIT 1`

	var exists int
	err := db.QueryRowContext(ctx, query, code).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}

	return true, nil
}

// GetActiveByCode retrieves a non-deleted capsule by its code.
func GetActiveByCode(ctx context.Context, db *sql.DB, code string) (*capsule.Capsule, error) {
	query := `SELECT ` + capsuleColumns + ` FROM capsules WHERE code = ? AND deleted_at IS NULL`

	c, err := scanCapsule(db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(code)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return c, nil
}

// GetActiveByID retrieves a non-deleted capsule by its surrogate id.
func GetActiveByID(ctx context.Context, db *sql.DB, id string) (*capsule.Capsule, error) {
	query := `SELECT ` + capsuleColumns + ` FROM capsules WHERE id = ? AND deleted_at IS NULL`

	c, err := scanCapsule(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return c, nil
}

// SoftDelete marks a capsule as deleted at the given instant. Deleting a row
// that is absent or already deleted yields CAPSULE_NOT_FOUND, which makes
// repeat deletes report not-found rather than success.
func SoftDelete(ctx context.Context, db *sql.DB, id string, now int64) error {
	query := `UPDATE capsules SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := db.ExecContext(ctx, query, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// ListActive returns one page of non-deleted capsules plus the total count,
// both read inside a single transaction so the pair is consistent. Ordering
// always tie-breaks on id ascending, so pagination over a static data set
// neither skips nor duplicates rows.
func ListActive(ctx context.Context, db *sql.DB, field SortField, dir SortDirection, limit, offset int) ([]capsule.Capsule, int, error) {
	if field != SortCreatedAt && field != SortID {
		return nil, 0, errors.NewInternal(fmt.Errorf("unknown sort field %q", field))
	}
	if dir != SortAsc && dir != SortDesc {
		return nil, 0, errors.NewInternal(fmt.Errorf("unknown sort direction %q", dir))
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM capsules WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM capsules WHERE deleted_at IS NULL ORDER BY %s %s, id ASC LIMIT ? OFFSET ?`,
		capsuleColumns, field, dir,
	)

	rows, err := tx.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var capsules []capsule.Capsule
	for rows.Next() {
		c, err := scanCapsuleRows(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		capsules = append(capsules, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return capsules, total, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCapsule(row *sql.Row) (*capsule.Capsule, error) {
	return scanFrom(row)
}

func scanCapsuleRows(rows *sql.Rows) (*capsule.Capsule, error) {
	return scanFrom(rows)
}

func scanFrom(s rowScanner) (*capsule.Capsule, error) {
	var (
		c         capsule.Capsule
		deletedAt sql.NullInt64
	)

	err := s.Scan(
		&c.ID, &c.Code, &c.Title, &c.Content, &c.CreatorNickname,
		&c.OpenTime, &c.CreatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Int64
	}

	return &c, nil
}
