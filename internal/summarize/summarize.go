// Package summarize calls an external LLM service to turn static findings
// and file previews into a prose review summary. Every failure degrades to
// a deterministic, locally generated fallback; nothing escapes the
// Summarize boundary.
package summarize

import (
	"context"
	"strings"

	"github.com/joescharf/cra/internal/models"
	"github.com/joescharf/cra/internal/pack"
)

// Issue is one finding handed to the summarizer, annotated with its
// filename for prompt display.
type Issue struct {
	RuleID   string
	Severity models.Severity
	Message  string
	Line     *int
	Filename string
}

// Config selects and configures the summarization backend. Loaded once at
// startup and passed in explicitly.
type Config struct {
	Enabled      bool
	APIKey       string
	BaseURL      string // "" = backend default
	Model        string
	Backend      string // "openai" (raw chat-completions) or "anthropic" (SDK)
	PerFileChars int
	TotalChars   int
}

// Configured reports whether an external call could be attempted.
func (c Config) Configured() bool {
	return c.Enabled && c.APIKey != ""
}

// Summarizer produces a summary for a whole review batch. The bool result
// reports whether the text came from the external service rather than the
// local fallback.
type Summarizer interface {
	Summarize(ctx context.Context, issues []Issue, files []pack.File) (string, bool)
}

// backend is one call shape against the external service.
type backend interface {
	complete(ctx context.Context, system, user string) (string, error)
}

type client struct {
	cfg     Config
	backend backend
	packer  pack.Packer
}

// New builds a Summarizer from config. The backend choice is resolved here
// once; callers only ever see the Summarizer interface.
func New(cfg Config) Summarizer {
	c := &client{
		cfg:    cfg,
		packer: pack.Packer{PerFileChars: cfg.PerFileChars, TotalChars: cfg.TotalChars},
	}
	switch cfg.Backend {
	case "anthropic":
		c.backend = newAnthropicBackend(cfg)
	default:
		c.backend = newChatBackend(cfg)
	}
	return c
}

func (c *client) Summarize(ctx context.Context, issues []Issue, files []pack.File) (string, bool) {
	if !c.cfg.Configured() {
		return Fallback(issues, "")
	}

	system, user := c.prompt(issues, files)
	text, err := completeWithRetry(ctx, c.backend, system, user)
	if err != nil {
		return Fallback(issues, errorHint(err))
	}
	return strings.TrimSpace(text), true
}

// prompt packs the batch for the selected backend. The SDK path gets the
// sandwich preview blocks; the raw chat path gets the head-truncated
// fair-share payload.
func (c *client) prompt(issues []Issue, files []pack.File) (system, user string) {
	if c.cfg.Backend == "anthropic" {
		return buildPrompt(issues, c.packer.Blocks(files))
	}
	return buildPayloadPrompt(issues, c.packer.Payload(files))
}

// Fallback returns the rule-based summary used when the external service is
// disabled, unreachable, unauthorized, or over quota. Deterministic and
// independent of network state. The bool result is always false.
func Fallback(issues []Issue, hint string) (string, bool) {
	base := []string{
		"- Prioritize highest-severity items first.",
		"- Add/expand tests for edge cases and error paths.",
		"- Improve docs and inline comments where logic is non-obvious.",
	}
	if len(issues) == 0 {
		base = []string{"- No critical issues from static checks; still consider tests and a brief manual review."}
	}

	if hint != "" {
		return "Summary (LLM fallback due to error):\n- " + hint + "\n" + strings.Join(base, "\n"), false
	}
	return "Summary:\n" + strings.Join(base, "\n"), false
}

// errorHint classifies a terminal failure into a short user-facing hint.
func errorHint(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "401"):
		return "Unauthorized (401): bad API key or project key not allowed."
	case strings.Contains(msg, "429"):
		return "Rate limit or quota exceeded (429): check billing/limits."
	case strings.Contains(msg, "insufficient_quota"):
		return "Insufficient quota: add billing credit."
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
