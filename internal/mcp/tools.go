package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var createToolDef = mcp.NewTool("capsule_create",
	mcp.WithDescription("Seal a new time-locked capsule. Returns the generated access code; the content stays hidden until the open time passes."),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("Capsule title (1-100 characters)"),
	),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("Message body to seal (1-10000 characters)"),
	),
	mcp.WithString("creator_nickname",
		mcp.Required(),
		mcp.Description("Name of the capsule author (1-50 characters)"),
	),
	mcp.WithString("open_time",
		mcp.Required(),
		mcp.Description("When the capsule unlocks, as an RFC 3339 timestamp. Must be in the future."),
	),
)

var getToolDef = mcp.NewTool("capsule_get",
	mcp.WithDescription("Fetch a capsule by its 8-character access code. Content is included only once the open time has passed; before that a countdown is returned instead."),
	mcp.WithString("code",
		mcp.Required(),
		mcp.Description("8-character access code (A-Z, 0-9)"),
	),
)

var statusToolDef = mcp.NewTool("capsule_status",
	mcp.WithDescription("Check whether a capsule is open yet without retrieving its content."),
	mcp.WithString("code",
		mcp.Required(),
		mcp.Description("8-character access code (A-Z, 0-9)"),
	),
)
