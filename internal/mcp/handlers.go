package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sealbox/sealbox/internal/errors"
	"github.com/sealbox/sealbox/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *ops.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *ops.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Request types for each tool

// CreateRequest represents the arguments for capsule_create.
type CreateRequest struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	CreatorNickname string `json:"creator_nickname"`
	OpenTime        string `json:"open_time"`
}

// GetRequest represents the arguments for capsule_get and capsule_status.
type GetRequest struct {
	Code string `json:"code"`
}

// HandleCreate seals a new capsule.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	openTime, err := time.Parse(time.RFC3339, input.OpenTime)
	if err != nil {
		return errorResult(errors.NewValidation("open_time must be an RFC 3339 timestamp")), nil
	}

	result, err := h.svc.Create(ctx, ops.CreateInput{
		Title:           input.Title,
		Content:         input.Content,
		CreatorNickname: input.CreatorNickname,
		OpenTime:        openTime,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet fetches a capsule by code, gating content on the open time.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := h.svc.Get(ctx, input.Code)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStatus reports open state and countdown without content.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := h.svc.Status(ctx, input.Code)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult converts an error into a structured MCP error result.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if capErr, ok := err.(*errors.CapsuleError); ok {
		errorObj := map[string]any{
			"code":    capErr.Code,
			"message": capErr.Message,
			"status":  capErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if capErr.Code != errors.ErrInternal && capErr.Details != nil {
			errorObj["details"] = capErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
