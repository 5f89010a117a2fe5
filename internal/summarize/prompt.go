package summarize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joescharf/cra/internal/pack"
)

const systemPrompt = "You are a senior code reviewer. Read the provided code excerpts and static-rule findings. " +
	"Return 4-10 concise, prioritized bullets with actionable, code-aware feedback. " +
	"Point to specific files/lines when possible. Prefer concrete fixes over generic advice. " +
	"If excerpts are partial, acknowledge uncertainty briefly."

const rawSystemPrompt = "You are a senior code reviewer.\n" +
	"Combine static-findings with your own reasoning to produce a concise, actionable review.\n" +
	"Prioritize correctness, security, and maintainability. Use bullet points. Reference filenames and line numbers when possible.\n" +
	"If multiple files interact, call out cross-file issues explicitly.\n"

// maxDigestIssues caps the findings digest included in the prompt.
const maxDigestIssues = 10

// buildPrompt assembles the system instruction and the user payload:
// a digest of the top issues by severity plus the packed file previews.
func buildPrompt(issues []Issue, blocks []pack.Block) (system, user string) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Context\n- Files attached: %d\n- Static issues detected: %d\n\n", len(blocks), len(issues))
	sb.WriteString("Static issues (top 10 by severity):\n")
	sb.WriteString(formatFindings(issues))
	sb.WriteString("\n\nCode excerpts (truncated for length):\n")
	sb.WriteString(formatPreviews(blocks))
	sb.WriteString("\n\nTask\nGiven the issues and the code excerpts above, write a short, practical review:\n")
	sb.WriteString("- Focus on likely defects, security risks, performance pitfalls, and readability.\n")
	sb.WriteString("- Reference specific filenames/lines if visible in excerpts.\n")
	sb.WriteString("- Suggest concrete refactors or tests.\n")
	return systemPrompt, sb.String()
}

// buildPayloadPrompt assembles the raw chat path's prompt: the full packed
// payload plus every finding, grouped review instructions at the end.
func buildPayloadPrompt(issues []Issue, payload string) (system, user string) {
	var sb strings.Builder
	sb.WriteString("Project files (truncated when necessary):\n\n")
	sb.WriteString(payload)
	sb.WriteString("\n\nStatic findings:\n")
	sb.WriteString(formatIssueLines(issues))
	sb.WriteString("\n\nWrite a concise, high-signal review:\n")
	sb.WriteString("- Group by theme (Correctness, Security, API design, Performance, Maintainability).\n")
	sb.WriteString("- Quote short code snippets or line refs when needed.\n")
	sb.WriteString("- Be specific and actionable; propose quick fixes.\n")
	sb.WriteString("- If something is fine, say so briefly.\n")
	return rawSystemPrompt, sb.String()
}

// formatIssueLines renders every finding, unranked and uncapped, for the
// payload prompt.
func formatIssueLines(issues []Issue) string {
	if len(issues) == 0 {
		return "No static issues detected."
	}
	lines := make([]string, 0, len(issues))
	for _, iss := range issues {
		file := iss.Filename
		if file == "" {
			file = "?"
		}
		sev := strings.ToUpper(string(iss.Severity))
		if iss.Line != nil {
			lines = append(lines, fmt.Sprintf("- [%s] %s in %s:%d — %s", sev, iss.RuleID, file, *iss.Line, iss.Message))
		} else {
			lines = append(lines, fmt.Sprintf("- [%s] %s in %s — %s", sev, iss.RuleID, file, iss.Message))
		}
	}
	return strings.Join(lines, "\n")
}

// formatFindings renders the top issues ordered by severity rank, keeping
// input order within each rank.
func formatFindings(issues []Issue) string {
	if len(issues) == 0 {
		return "- None"
	}

	tops := make([]Issue, len(issues))
	copy(tops, issues)
	sort.SliceStable(tops, func(i, j int) bool {
		return tops[i].Severity.Rank() < tops[j].Severity.Rank()
	})
	if len(tops) > maxDigestIssues {
		tops = tops[:maxDigestIssues]
	}

	lines := make([]string, 0, len(tops))
	for _, iss := range tops {
		loc := ""
		if iss.Filename != "" {
			if iss.Line != nil {
				loc = fmt.Sprintf(" (%s:%d)", iss.Filename, *iss.Line)
			} else {
				loc = fmt.Sprintf(" (%s)", iss.Filename)
			}
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s%s",
			strings.ToUpper(string(iss.Severity)), iss.RuleID, iss.Message, loc))
	}
	return strings.Join(lines, "\n")
}

func formatPreviews(blocks []pack.Block) string {
	if len(blocks) == 0 {
		return "- No code provided."
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, fmt.Sprintf("--- %s [%s] ---\n```%s\n%s\n```",
			b.Filename, b.Language, b.Language, b.Preview))
	}
	return strings.Join(parts, "\n\n")
}
