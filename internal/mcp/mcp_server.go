// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the prdash MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"CloudStack PR Quality Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_pr_failures ---
	s.AddTool(mcp.NewTool("get_pr_failures",
		mcp.WithDescription("List the failing smoke tests of a pull request, each classified as common (failing across PRs) or unique to the PR."),
		mcp.WithNumber("pr_number", mcp.Description("The pull request number."), mcp.Required()),
	), h.handleGetPRFailures)

	// --- 2. Tool: classify_test ---
	s.AddTool(mcp.NewTool("classify_test",
		mcp.WithDescription("Tell whether a failing test is a common failure or specific to one pull request."),
		mcp.WithString("test_name", mcp.Description("The exact test name, e.g. test_01_deploy_vm."), mcp.Required()),
		mcp.WithNumber("pr_number", mcp.Description("The pull request the failure was seen on."), mcp.Required()),
	), h.handleClassifyTest)

	// --- 3. Tool: get_summary ---
	s.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Summarize stored smoke-test results: totals, runs per hypervisor and the most frequent failures."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of frequent failures returned.")),
	), h.handleGetSummary)

	// --- 4. Tool: parse_comment ---
	s.AddTool(mcp.NewTool("parse_comment",
		mcp.WithDescription("Extract smoke-test results and coverage from a raw bot comment without storing anything."),
		mcp.WithString("body", mcp.Description("The markdown body of the comment."), mcp.Required()),
		mcp.WithString("author", mcp.Description("The comment author login; coverage is only read from codecov comments.")),
		mcp.WithNumber("pr_number", mcp.Description("The pull request the comment belongs to.")),
	), h.handleParseComment)

	return s
}

// StartMCPServer starts the prdash MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
