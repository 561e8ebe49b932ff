package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/birdwatch/birdwatch/internal/errors"
	"github.com/birdwatch/birdwatch/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db *sql.DB
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB) *Handlers {
	return &Handlers{db: db}
}

// TweetQueryRequest represents the arguments for tweet_query.
type TweetQueryRequest struct {
	Handle     string `json:"handle,omitempty"`
	SinceHours int    `json:"since_hours,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// SummaryLatestRequest represents the arguments for summary_latest.
type SummaryLatestRequest struct {
	Limit int `json:"limit,omitempty"`
}

// HandleAccountList handles the account_list tool call.
func (h *Handlers) HandleAccountList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.List(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTweetQuery handles the tweet_query tool call.
func (h *Handlers) HandleTweetQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TweetQueryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Query(h.db, ops.QueryInput{
		Handle:     input.Handle,
		SinceHours: input.SinceHours,
		Limit:      input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSummaryLatest handles the summary_latest tool call.
func (h *Handlers) HandleSummaryLatest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SummaryLatestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.History(h.db, ops.HistoryInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed to avoid leaking paths or
// SQL text to clients.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if e, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    e.Code,
			"message": e.Message,
		}
		if e.Code != errors.ErrInternal && e.Details != nil {
			errorObj["details"] = e.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
