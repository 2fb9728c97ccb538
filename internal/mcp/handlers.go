package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
	"github.com/ziadkadry99/portfolio-ai/internal/insights"
	"github.com/ziadkadry99/portfolio-ai/internal/prompts"
	"github.com/ziadkadry99/portfolio-ai/internal/result"
)

func (s *Server) handleGenerateReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: prompt"), nil
	}
	return s.run(ctx, insights.Request{UseCase: prompts.Report, Text: prompt})
}

func (s *Server) handleSuggestActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(ctx, insights.Request{UseCase: prompts.Suggestions})
}

func (s *Server) handleExplainIndicator(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	return s.run(ctx, insights.Request{UseCase: prompts.Explain, Text: query})
}

func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	filters := map[string]any{}
	for arg, key := range map[string]string{
		"document_type": "documentType",
		"area":          "area",
		"project":       "project",
		"date_range":    "dateRange",
	} {
		if v := request.GetString(arg, ""); v != "" {
			filters[key] = v
		}
	}
	return s.run(ctx, insights.Request{UseCase: prompts.Search, Text: query, Filters: filters})
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}
	return s.run(ctx, insights.Request{UseCase: prompts.Chat, Text: question})
}

// run executes req and renders prose answers as plain text and structured
// payloads as indented JSON.
func (s *Server) run(ctx context.Context, req insights.Request) (*mcp.CallToolResult, error) {
	resp, err := s.runner.Run(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s error: %s", apperr.KindOf(err), apperr.PublicMessage(err))), nil
	}

	switch req.UseCase {
	case prompts.Chat:
		var answer result.ChatAnswer
		if err := json.Unmarshal(resp.Data, &answer); err == nil {
			return mcp.NewToolResultText(answer.Response), nil
		}
	case prompts.Explain:
		var exp result.Explanation
		if err := json.Unmarshal(resp.Data, &exp); err == nil {
			return mcp.NewToolResultText(exp.Explanation), nil
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, resp.Data, "", "  "); err != nil {
		return mcp.NewToolResultText(string(resp.Data)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
