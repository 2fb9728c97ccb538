package mcp

import "github.com/mark3labs/mcp-go/mcp"

// generateReportTool defines the generate_report MCP tool.
var generateReportTool = mcp.NewTool("generate_report",
	mcp.WithDescription("Generate a portfolio report (table or narrative summary) from a natural language request. Returns the report as JSON."),
	mcp.WithString("prompt",
		mcp.Required(),
		mcp.Description("What the report should show, e.g. \"desvio orçamentário por projeto\""),
	),
)

// suggestActionsTool defines the suggest_actions MCP tool.
var suggestActionsTool = mcp.NewTool("suggest_actions",
	mcp.WithDescription("Analyse the whole portfolio and return prioritized action suggestions as JSON."),
)

// explainIndicatorTool defines the explain_indicator MCP tool.
var explainIndicatorTool = mcp.NewTool("explain_indicator",
	mcp.WithDescription("Explain a financial indicator (CPI, SPI, BU, deviation, execution rate) using current portfolio data."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("The indicator or question to explain"),
	),
)

// searchDocumentsTool defines the search_documents MCP tool.
var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Search portfolio documents (contracts, minutes, reports) semantically. Returns ranked results as JSON."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithString("document_type",
		mcp.Description("Only return documents of this type, e.g. contrato or ata"),
	),
	mcp.WithString("area",
		mcp.Description("Only return documents of this area"),
	),
	mcp.WithString("project",
		mcp.Description("Only return documents of this project code"),
	),
	mcp.WithString("date_range",
		mcp.Description("YYYY-MM-DD..YYYY-MM-DD or a window such as last_30_days"),
	),
)

// askTool defines the ask MCP tool.
var askTool = mcp.NewTool("ask",
	mcp.WithDescription("Ask the portfolio assistant a question about projects, budgets and execution."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to ask"),
	),
)
