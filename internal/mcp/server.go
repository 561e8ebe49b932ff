// Package mcp exposes the stored data to MCP clients over stdio.
package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var accountListToolDef = mcp.NewTool("account_list",
	mcp.WithDescription("List the monitored X/Twitter accounts with their stored tweet counts."),
)

var tweetQueryToolDef = mcp.NewTool("tweet_query",
	mcp.WithDescription("Query stored tweets from the trailing window, newest first."),
	mcp.WithString("handle",
		mcp.Description("Restrict results to one account handle."),
	),
	mcp.WithNumber("since_hours",
		mcp.Description("Window size in hours counted back from now (default 24)."),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of tweets to return."),
	),
)

var summaryLatestToolDef = mcp.NewTool("summary_latest",
	mcp.WithDescription("Fetch the most recent daily summaries, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Number of summaries to return (default 7)."),
	),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"account_list": {
		def:     accountListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAccountList },
	},
	"tweet_query": {
		def:     tweetQueryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTweetQuery },
	},
	"summary_latest": {
		def:     summaryLatestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSummaryLatest },
	},
}

// NewServer creates a new MCP server with the birdwatch tools
// registered. Tools are read-only: registration and ingestion stay on
// the CLI, where the pacing and quota policies live.
func NewServer(db *sql.DB, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"birdwatch",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, version string) error {
	return server.ServeStdio(NewServer(db, version))
}
