package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudstack-dashboard/prdash/core"
	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// facts returns the fact store or a tool error result.
func (h *toolHandler) facts() (contract.FactStore, *mcp.CallToolResult) {
	if h.mgr == nil || h.mgr.GetFactStore() == nil {
		return nil, mcp.NewToolResultError("fact store is not initialized")
	}
	return h.mgr.GetFactStore(), nil
}

// jsonResult marshals v as the tool's text content.
func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetPRFailures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prNumber := request.GetInt("pr_number", 0)
	if prNumber <= 0 {
		return mcp.NewToolResultError("pr_number must be a positive integer"), nil
	}
	facts, errResult := h.facts()
	if errResult != nil {
		return errResult, nil
	}

	results, err := core.ClassifyFailures(ctx, facts, prNumber)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("classification failed: %v", err)), nil
	}
	return jsonResult(results), nil
}

func (h *toolHandler) handleClassifyTest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Names are matched exactly
	testName := request.GetString("test_name", "")
	if testName == "" {
		return mcp.NewToolResultError("test_name is required"), nil
	}
	if strings.TrimSpace(testName) != testName {
		return mcp.NewToolResultError("test_name must not have leading or trailing whitespace"), nil
	}
	prNumber := request.GetInt("pr_number", 0)
	if prNumber <= 0 {
		return mcp.NewToolResultError("pr_number must be a positive integer"), nil
	}
	facts, errResult := h.facts()
	if errResult != nil {
		return errResult, nil
	}

	class, err := core.ClassifyFailure(ctx, facts, testName, prNumber)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("classification failed: %v", err)), nil
	}
	return jsonResult(class), nil
}

func (h *toolHandler) handleGetSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = min(l, contract.MaxResultLimit)
	}
	if limit <= 0 {
		limit = contract.DefaultResultLimit
	}
	facts, errResult := h.facts()
	if errResult != nil {
		return errResult, nil
	}

	dash, err := core.GetDashboard(ctx, facts, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation failed: %v", err)), nil
	}
	return jsonResult(dash), nil
}

func (h *toolHandler) handleParseComment(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := request.GetString("body", "")
	if strings.TrimSpace(body) == "" {
		return mcp.NewToolResultError("body is required"), nil
	}
	comment := schema.CommentRecord{Body: body, AuthorLogin: request.GetString("author", "")}
	ref := h.baseCfg.RepoRef(request.GetInt("pr_number", 0))

	parsed := core.ParseComment(comment, schema.CommentMeta{}, ref)
	return jsonResult(parsed), nil
}
