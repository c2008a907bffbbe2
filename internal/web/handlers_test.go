package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sealbox/sealbox/internal/auth"
	"github.com/sealbox/sealbox/internal/config"
	"github.com/sealbox/sealbox/internal/db"
	"github.com/sealbox/sealbox/internal/ops"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const testPassword = "correct horse battery staple"

func testServer(t *testing.T) (http.Handler, *stubClock) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	clock := &stubClock{now: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)}
	cfg := config.DefaultConfig()
	cfg.AdminPassword = testPassword
	cfg.TokenSecret = "test-secret-do-not-use"
	admin := auth.NewAdmin(cfg, clock)
	svc := ops.NewService(database, admin, clock, nil)
	return NewServer(svc, admin, "test", "127.0.0.1", 0).Handler, clock
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func createCapsule(t *testing.T, h http.Handler, title string, openTime time.Time) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/capsules", "", map[string]string{
		"title":            title,
		"content":          "hello from the past",
		"creator_nickname": "alice",
		"open_time":        openTime.Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]any)
	code, _ := data["code"].(string)
	if code == "" {
		t.Fatalf("create response missing code: %v", env)
	}
	return code
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/admin/login", "", map[string]string{"password": testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	token, _ := env["data"].(map[string]any)["token"].(string)
	if token == "" {
		t.Fatal("login response missing token")
	}
	return token
}

func TestCreateAndGetLifecycle(t *testing.T) {
	h, clock := testServer(t)
	code := createCapsule(t, h, "graduation", clock.Now().Add(time.Hour))

	// Locked: no content, countdown present
	rec := doJSON(t, h, http.MethodGet, "/capsules/"+code, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["can_open"] != false {
		t.Error("capsule should be locked")
	}
	if _, ok := data["content"]; ok {
		t.Error("locked capsule must not expose content")
	}
	if _, ok := data["time_remaining"]; !ok {
		t.Error("locked capsule should include time_remaining")
	}

	clock.Advance(2 * time.Hour)

	rec = doJSON(t, h, http.MethodGet, "/capsules/"+code, "", nil)
	data = decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["can_open"] != true {
		t.Error("capsule should be unlocked after open time")
	}
	if data["content"] != "hello from the past" {
		t.Errorf("content = %v", data["content"])
	}
}

func TestStatusNeverIncludesContent(t *testing.T) {
	h, clock := testServer(t)
	code := createCapsule(t, h, "status check", clock.Now().Add(time.Minute))
	clock.Advance(time.Hour)

	rec := doJSON(t, h, http.MethodGet, "/capsules/"+code+"/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status status = %d", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["can_open"] != true {
		t.Error("capsule should be open")
	}
	if _, ok := data["content"]; ok {
		t.Error("status must not expose content")
	}
}

func TestCreateValidation(t *testing.T) {
	h, clock := testServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"bad open_time", map[string]string{
			"title": "t", "content": "c", "creator_nickname": "n", "open_time": "tomorrow",
		}},
		{"past open_time", map[string]string{
			"title": "t", "content": "c", "creator_nickname": "n",
			"open_time": clock.Now().Add(-time.Hour).Format(time.RFC3339),
		}},
		{"empty title", map[string]string{
			"title": "", "content": "c", "creator_nickname": "n",
			"open_time": clock.Now().Add(time.Hour).Format(time.RFC3339),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/capsules", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if env["success"] != false {
				t.Error("expected success=false")
			}
			if env["error"] == nil {
				t.Error("expected error info")
			}
		})
	}
}

func TestCreateRejectsMalformedJSON(t *testing.T) {
	h, _ := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/capsules", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetUnknownCode(t *testing.T) {
	h, _ := testServer(t)

	rec := doJSON(t, h, http.MethodGet, "/capsules/ZZZZ9999", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown code status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/capsules/short", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid code status = %d, want 400", rec.Code)
	}
}

func TestRender(t *testing.T) {
	h, clock := testServer(t)
	rec := doJSON(t, h, http.MethodPost, "/capsules", "", map[string]string{
		"title":            "markdown",
		"content":          "# Hello\n\nSome **bold** text.",
		"creator_nickname": "bob",
		"open_time":        clock.Now().Add(time.Minute).Format(time.RFC3339),
	})
	code := decodeEnvelope(t, rec)["data"].(map[string]any)["code"].(string)

	// Locked capsules refuse rendering
	rec = doJSON(t, h, http.MethodGet, "/capsules/"+code+"/render", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("locked render status = %d, want 403", rec.Code)
	}
	errObj := decodeEnvelope(t, rec)["error"].(map[string]any)
	if errObj["code"] != "CAPSULE_LOCKED" {
		t.Errorf("locked render error code = %v, want CAPSULE_LOCKED", errObj["code"])
	}

	clock.Advance(time.Hour)

	rec = doJSON(t, h, http.MethodGet, "/capsules/"+code+"/render", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1") || !strings.Contains(body, "<strong>bold</strong>") {
		t.Errorf("unexpected render output: %s", body)
	}
}

func TestAdminFlow(t *testing.T) {
	h, clock := testServer(t)

	for i := range 3 {
		createCapsule(t, h, fmt.Sprintf("capsule %d", i), clock.Now().Add(time.Hour))
	}

	// Listing requires a token
	rec := doJSON(t, h, http.MethodGet, "/admin/capsules", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list status = %d, want 401", rec.Code)
	}

	token := login(t, h)

	rec = doJSON(t, h, http.MethodGet, "/admin/capsules?page=1&size=2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	items := data["items"].([]any)
	if len(items) != 2 {
		t.Errorf("page size = %d, want 2", len(items))
	}
	pg := data["pagination"].(map[string]any)
	if pg["total_items"] != float64(3) {
		t.Errorf("total_items = %v, want 3", pg["total_items"])
	}

	// Delete, then the capsule is gone
	code := items[0].(map[string]any)["code"].(string)
	rec = doJSON(t, h, http.MethodDelete, "/admin/capsules/"+code, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/capsules/"+code, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted capsule status = %d, want 404", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := testServer(t)
	rec := doJSON(t, h, http.MethodPost, "/admin/login", "", map[string]string{"password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestDeleteRequiresToken(t *testing.T) {
	h, clock := testServer(t)
	code := createCapsule(t, h, "protected", clock.Now().Add(time.Hour))

	rec := doJSON(t, h, http.MethodDelete, "/admin/capsules/"+code, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	rec = doJSON(t, h, http.MethodDelete, "/admin/capsules/"+code, "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}
}

func TestHealthAndAbout(t *testing.T) {
	h, _ := testServer(t)

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	if decodeEnvelope(t, rec)["data"].(map[string]any)["status"] != "ok" {
		t.Error("health status field should be ok")
	}

	rec = doJSON(t, h, http.MethodGet, "/about", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("about status = %d", rec.Code)
	}
	if decodeEnvelope(t, rec)["data"].(map[string]any)["name"] != "sealbox" {
		t.Error("about should identify the service")
	}
}

func TestSecurityHeaders(t *testing.T) {
	h, _ := testServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options header")
	}
}
