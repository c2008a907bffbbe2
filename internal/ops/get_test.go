package ops

import (
	"context"
	"testing"
	"time"

	"github.com/sealbox/sealbox/internal/errors"
)

func TestGet_InvalidCodeBeforeStore(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	for _, code := range []string{"", "short", "toolong99X", "a3x9k2m7", "A3X9K2M!"} {
		_, err := svc.Get(ctx, code)
		if !errors.Is(err, errors.ErrInvalidCode) {
			t.Errorf("Get(%q) = %v, want ErrInvalidCode", code, err)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Get(context.Background(), "AAAAAAAA")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestGet_LockedThenUnlocked(t *testing.T) {
	svc, clock := testService(t)
	ctx := context.Background()

	out, err := svc.Create(ctx, CreateInput{
		Title:           "Hello",
		Content:         "World",
		CreatorNickname: "Alice",
		OpenTime:        clock.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A second after creation: locked, countdown shows 59 minutes
	clock.Advance(time.Second)
	view, err := svc.Get(ctx, out.Code)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if view.CanOpen {
		t.Error("CanOpen = true before open time")
	}
	if view.Content != "" {
		t.Errorf("Content = %q, want withheld while locked", view.Content)
	}
	if view.TimeRemaining == nil {
		t.Fatal("TimeRemaining missing while locked")
	}
	if view.TimeRemaining.Days != 0 || view.TimeRemaining.Hours != 0 || view.TimeRemaining.Minutes != 59 {
		t.Errorf("TimeRemaining = %+v, want {0 0 59}", view.TimeRemaining)
	}

	// Past the hour mark: unlocked, content round-trips, no countdown
	clock.Advance(time.Hour + time.Second)
	view, err = svc.Get(ctx, out.Code)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !view.CanOpen {
		t.Error("CanOpen = false after open time")
	}
	if view.Content != "World" {
		t.Errorf("Content = %q, want %q", view.Content, "World")
	}
	if view.TimeRemaining != nil {
		t.Error("TimeRemaining present after unlock")
	}
}

func TestGet_CountdownAtWholeHour(t *testing.T) {
	svc, clock := testService(t)
	ctx := context.Background()

	out, err := svc.Create(ctx, CreateInput{
		Title:           "Hello",
		Content:         "World",
		CreatorNickname: "Alice",
		OpenTime:        clock.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Read at the creation instant: exactly 3600s left decomposes to a
	// whole hour, never to 59 minutes.
	view, err := svc.Get(ctx, out.Code)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if view.TimeRemaining == nil {
		t.Fatal("TimeRemaining missing while locked")
	}
	if view.TimeRemaining.Days != 0 || view.TimeRemaining.Hours != 1 || view.TimeRemaining.Minutes != 0 {
		t.Errorf("TimeRemaining = %+v, want {0 1 0}", view.TimeRemaining)
	}
}

func TestGet_ExactOpenTimeIsUnlocked(t *testing.T) {
	svc, clock := testService(t)
	ctx := context.Background()

	out, err := svc.Create(ctx, CreateInput{
		Title:           "Hello",
		Content:         "World",
		CreatorNickname: "Alice",
		OpenTime:        clock.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// remaining == 0 counts as unlocked; no zero countdown is surfaced
	clock.Advance(time.Hour)
	view, err := svc.Get(ctx, out.Code)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !view.CanOpen || view.Content != "World" || view.TimeRemaining != nil {
		t.Errorf("view at exact open time = %+v, want unlocked with content", view)
	}
}

func TestStatus_NeverIncludesContent(t *testing.T) {
	svc, clock := testService(t)
	ctx := context.Background()

	out, err := svc.Create(ctx, CreateInput{
		Title:           "Hello",
		Content:         "World",
		CreatorNickname: "Alice",
		OpenTime:        clock.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	view, err := svc.Status(ctx, out.Code)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if view.Content != "" || view.CanOpen {
		t.Errorf("locked status = %+v, want no content, CanOpen=false", view)
	}

	clock.Advance(2 * time.Hour)
	view, err = svc.Status(ctx, out.Code)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if view.Content != "" {
		t.Errorf("Content = %q, status must never include content", view.Content)
	}
	if !view.CanOpen {
		t.Error("CanOpen = false after open time")
	}
}

func TestStatus_InvalidAndMissing(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Status(ctx, "nope"); !errors.Is(err, errors.ErrInvalidCode) {
		t.Errorf("Status(malformed) = %v, want ErrInvalidCode", err)
	}
	if _, err := svc.Status(ctx, "AAAAAAAA"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Status(missing) = %v, want ErrNotFound", err)
	}
}
