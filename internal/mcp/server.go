// Package mcp exposes stored reviews as MCP tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/cra/internal/models"
	"github.com/joescharf/cra/internal/store"
	"github.com/joescharf/cra/internal/summarize"
)

// Server wraps the review data layer and exposes it as MCP tools.
type Server struct {
	store  store.Store
	llmCfg summarize.Config
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store, llmCfg summarize.Config) *Server {
	return &Server{store: s, llmCfg: llmCfg}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("cra", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listReviewsTool())
	srv.AddTool(s.getReviewTool())
	srv.AddTool(s.deleteReviewTool())
	srv.AddTool(s.llmStatusTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

type reviewSummaryOut struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	LLMUsed    bool   `json:"llm_used"`
	FileCount  int    `json:"file_count"`
	IssueCount int    `json:"issue_count"`
}

type issueOut struct {
	ID       string `json:"id"`
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     *int   `json:"line"`
	FileID   string `json:"file_id,omitempty"`
}

type fileOut struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Language string `json:"language,omitempty"`
}

type reviewOut struct {
	ID        string     `json:"id"`
	CreatedAt string     `json:"created_at"`
	Summary   string     `json:"summary"`
	LLMUsed   bool       `json:"llm_used"`
	Files     []fileOut  `json:"files"`
	Issues    []issueOut `json:"issues"`
}

func serializeReview(r *models.Review) reviewOut {
	out := reviewOut{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		Summary:   r.Summary,
		LLMUsed:   r.LLMUsed,
		Files:     make([]fileOut, 0, len(r.Files)),
		Issues:    make([]issueOut, 0, len(r.Issues)),
	}
	for _, f := range r.Files {
		out.Files = append(out.Files, fileOut{ID: f.ID, Filename: f.Filename, Language: f.Language})
	}
	for _, issue := range r.Issues {
		out.Issues = append(out.Issues, issueOut{
			ID:       issue.ID,
			RuleID:   issue.RuleID,
			Severity: string(issue.Severity),
			Message:  issue.Message,
			Line:     issue.Line,
			FileID:   issue.FileID,
		})
	}
	return out
}

// cra_list_reviews
func (s *Server) listReviewsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("cra_list_reviews",
		mcp.WithDescription("List stored reviews, most recent first. Returns a JSON array with id, created_at, llm_used, and file/issue counts."),
	)
	return tool, s.handleListReviews
}

func (s *Server) handleListReviews(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reviews: %v", err)), nil
	}

	out := make([]reviewSummaryOut, len(reviews))
	for i, r := range reviews {
		out[i] = reviewSummaryOut{
			ID:         r.ID,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
			LLMUsed:    r.LLMUsed,
			FileCount:  len(r.Files),
			IssueCount: len(r.Issues),
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal reviews: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// cra_get_review
func (s *Server) getReviewTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("cra_get_review",
		mcp.WithDescription("Get one review by id, including files, issues, and the summary."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Review id")),
	)
	return tool, s.handleGetReview
}

func (s *Server) handleGetReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	r, err := s.store.GetReview(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("review not found: %s", id)), nil
	}

	data, err := json.Marshal(serializeReview(r))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal review: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// cra_delete_review
func (s *Server) deleteReviewTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("cra_delete_review",
		mcp.WithDescription("Delete one review by id, cascading to its files and issues."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Review id")),
	)
	return tool, s.handleDeleteReview
}

func (s *Server) handleDeleteReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	if err := s.store.DeleteReview(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete review: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"status":"deleted","id":%q}`, id)), nil
}

// cra_llm_status
func (s *Server) llmStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("cra_llm_status",
		mcp.WithDescription("Report whether the external summarization service is configured, with base URL and model. Never returns the credential."),
	)
	return tool, s.handleLLMStatus
}

func (s *Server) handleLLMStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	baseURL := s.llmCfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	data, err := json.Marshal(map[string]any{
		"configured": s.llmCfg.Configured(),
		"base_url":   baseURL,
		"model":      s.llmCfg.Model,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
