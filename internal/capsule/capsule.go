package capsule

import "time"

// Field limits enforced at the boundary before a capsule reaches the store.
const (
	MaxTitleChars    = 100
	MaxContentChars  = 10000
	MaxNicknameChars = 50
)

// Capsule represents a sealed message as stored. Everything except
// DeletedAt is immutable after creation; soft delete is the only mutation
// the store ever applies.
type Capsule struct {
	// ID is a ULID assigned by the store at insert time
	ID string

	// Code is the 8-character public identifier ([A-Z0-9])
	Code string

	// Title is a short human-readable label
	Title string

	// Content is the sealed message body, only exposed once OpenTime passes
	Content string

	// CreatorNickname is the display name of whoever sealed the capsule
	CreatorNickname string

	// OpenTime is the Unix timestamp at which the capsule unlocks
	OpenTime int64

	// CreatedAt is the Unix timestamp when the capsule was persisted
	CreatedAt int64

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64
}

// Unlocked reports whether the gate is open at the sampled instant now
// (Unix seconds). The result is recomputed on every call, never stored.
func (c *Capsule) Unlocked(now int64) bool {
	return now >= c.OpenTime
}

// TimeRemaining is the whole-seconds countdown shown while a capsule is
// locked. Seconds below a minute are discarded.
type TimeRemaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
}

// NewTimeRemaining decomposes a positive remaining duration in seconds.
func NewTimeRemaining(seconds int64) TimeRemaining {
	return TimeRemaining{
		Days:    seconds / 86400,
		Hours:   (seconds % 86400) / 3600,
		Minutes: (seconds % 3600) / 60,
	}
}

// View is the external projection of a capsule at a single sampled instant.
// Content is structurally absent while locked; TimeRemaining is absent once
// unlocked. No negative countdown is ever surfaced: a remainder of zero or
// less counts as unlocked.
type View struct {
	ID              string         `json:"id"`
	Code            string         `json:"code"`
	Title           string         `json:"title"`
	CreatorNickname string         `json:"creator_nickname"`
	Content         string         `json:"content,omitempty"`
	CanOpen         bool           `json:"can_open"`
	TimeRemaining   *TimeRemaining `json:"time_remaining,omitempty"`
	OpenTime        string         `json:"open_time"`
	CreatedAt       string         `json:"created_at"`
}

// Project builds the external view of c at the instant now (Unix seconds).
// Callers sample now exactly once per logical operation so that the gate
// decision and the countdown agree with each other. includeContent is false
// for status probes, which never expose content regardless of gate state.
func (c *Capsule) Project(now int64, includeContent bool) View {
	v := View{
		ID:              c.ID,
		Code:            c.Code,
		Title:           c.Title,
		CreatorNickname: c.CreatorNickname,
		OpenTime:        FormatInstant(c.OpenTime),
		CreatedAt:       FormatInstant(c.CreatedAt),
	}

	if c.Unlocked(now) {
		v.CanOpen = true
		if includeContent {
			v.Content = c.Content
		}
		return v
	}

	tr := NewTimeRemaining(c.OpenTime - now)
	v.TimeRemaining = &tr
	return v
}

// FormatInstant renders a Unix timestamp as RFC 3339 UTC.
func FormatInstant(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
