package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/sealbox/sealbox/internal/auth"
	caperr "github.com/sealbox/sealbox/internal/errors"
	"github.com/sealbox/sealbox/internal/ops"
)

// Handlers holds dependencies for HTTP request handlers.
type Handlers struct {
	svc     *ops.Service
	admin   *auth.Admin
	version string
}

// apiResponse is the envelope wrapping every JSON response.
type apiResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *errorInfo `json:"error,omitempty"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Message: message, Data: data}); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var ce *caperr.CapsuleError
	if !errors.As(err, &ce) {
		ce = caperr.NewInternal(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ce.Status)
	resp := apiResponse{Error: &errorInfo{Code: string(ce.Code), Message: ce.Message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// bearerToken extracts the credential from the Authorization header.
// Returns the empty string when the header is missing or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

type createRequest struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	CreatorNickname string `json:"creator_nickname"`
	OpenTime        string `json:"open_time"`
}

// HandleCreate stores a new capsule and returns its access code.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, caperr.NewValidation("request body must be valid JSON"))
		return
	}
	openTime, err := time.Parse(time.RFC3339, req.OpenTime)
	if err != nil {
		writeError(w, caperr.NewValidation("open_time must be an RFC 3339 timestamp"))
		return
	}
	out, err := h.svc.Create(r.Context(), ops.CreateInput{
		Title:           req.Title,
		Content:         req.Content,
		CreatorNickname: req.CreatorNickname,
		OpenTime:        openTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "capsule created", out)
}

// HandleGet returns a capsule by code. Content is included only once
// the open time has passed.
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Get(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", out)
}

// HandleStatus returns the open state and countdown for a capsule
// without ever including its content.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Status(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", out)
}

// HandleRender returns the capsule content rendered as HTML. Locked
// capsules are refused.
func (h *Handlers) HandleRender(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Get(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !out.CanOpen {
		writeError(w, caperr.NewCapsuleLocked(out.OpenTime))
		return
	}
	var buf strings.Builder
	if err := goldmark.Convert([]byte(out.Content), &buf); err != nil {
		writeError(w, caperr.NewInternal(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(buf.String())); err != nil {
		log.Printf("write render response: %v", err)
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// HandleLogin exchanges the admin password for a signed token.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, caperr.NewValidation("request body must be valid JSON"))
		return
	}
	token, err := h.admin.Login(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "login successful", loginResponse{Token: token})
}

// HandleList returns a page of active capsules. Requires a valid
// admin token.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	out, err := h.svc.List(r.Context(), ops.ListInput{
		Credential: bearerToken(r),
		Sort:       q.Get("sort"),
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", out)
}

// HandleDelete soft-deletes a capsule by code. Requires a valid
// admin token.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Delete(r.Context(), ops.DeleteInput{
		Credential: bearerToken(r),
		Code:       r.PathValue("code"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "capsule deleted", out)
}

// HandleHealth reports service liveness.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleAbout reports service identity and version.
func (h *Handlers) HandleAbout(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", map[string]string{
		"name":        "sealbox",
		"version":     h.version,
		"description": "time-locked capsule service",
	})
}
