// Package rules implements the static checks run over each uploaded file.
// Rules are pure functions: no I/O, deterministic, and they never fail;
// even a syntax error in the input is reported as a finding, not an error.
package rules

import (
	"fmt"
	"strings"

	"github.com/joescharf/cra/internal/models"
)

// Finding is one static-analysis observation. Line is nil when the finding
// applies to the whole file.
type Finding struct {
	RuleID   string
	Severity models.Severity
	Message  string
	Line     *int
}

// Rule inspects one file's content and emits zero or more findings.
type Rule interface {
	ID() string
	Check(filename, language, content string) []Finding
}

// Engine runs an ordered set of rules over a file.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with the given rules.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Default returns the engine with the baseline rule set.
func Default() *Engine {
	return NewEngine(
		LongLine{},
		TodoOwner{},
		SecretLeak{},
		DebugPrint{},
		SwallowedError{},
		GoSyntax{},
	)
}

// Run evaluates every rule against the file. Findings are line-ordered
// within each rule; rule order follows engine registration order.
func (e *Engine) Run(filename, language, content string) []Finding {
	var findings []Finding
	for _, r := range e.rules {
		findings = append(findings, r.Check(filename, language, content)...)
	}
	return findings
}

func lineNo(n int) *int { return &n }

// LongLine flags lines longer than 120 characters.
type LongLine struct{}

const longLineLimit = 120

func (LongLine) ID() string { return "STYLE_LONG_LINE" }

func (LongLine) Check(_, _, content string) []Finding {
	var findings []Finding
	for idx, line := range strings.Split(content, "\n") {
		if len(line) > longLineLimit {
			findings = append(findings, Finding{
				RuleID:   "STYLE_LONG_LINE",
				Severity: models.SeverityInfo,
				Message:  fmt.Sprintf("Line exceeds %d chars (%d). Consider wrapping.", longLineLimit, len(line)),
				Line:     lineNo(idx + 1),
			})
		}
	}
	return findings
}

// TodoOwner flags TODO comments with no owner tag. A "@" anywhere on the
// line counts as ownership.
type TodoOwner struct{}

func (TodoOwner) ID() string { return "DOC_TODO_NO_OWNER" }

func (TodoOwner) Check(_, _, content string) []Finding {
	var findings []Finding
	for idx, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "TODO") && !strings.Contains(line, "@") {
			findings = append(findings, Finding{
				RuleID:   "DOC_TODO_NO_OWNER",
				Severity: models.SeverityWarn,
				Message:  "TODO without an owner (e.g., TODO @alice: ...).",
				Line:     lineNo(idx + 1),
			})
		}
	}
	return findings
}

// secretMarkers are matched as raw substrings. Coarse on purpose; false
// positives are an accepted limitation.
var secretMarkers = []string{
	"AWS_SECRET_ACCESS_KEY",
	"BEGIN PRIVATE KEY",
	"password=",
	"passwd=",
}

// SecretLeak flags lines containing credential-looking markers.
type SecretLeak struct{}

func (SecretLeak) ID() string { return "SEC_SECRET_LEAK" }

func (SecretLeak) Check(_, _, content string) []Finding {
	var findings []Finding
	for idx, line := range strings.Split(content, "\n") {
		for _, m := range secretMarkers {
			if strings.Contains(line, m) {
				findings = append(findings, Finding{
					RuleID:   "SEC_SECRET_LEAK",
					Severity: models.SeverityError,
					Message:  "Possible secret in source. Remove and rotate credentials.",
					Line:     lineNo(idx + 1),
				})
				break
			}
		}
	}
	return findings
}

// DebugPrint flags Python files that call print() without a main-module
// guard. Substring heuristic, whole-file finding.
type DebugPrint struct{}

func (DebugPrint) ID() string { return "PY_DEBUG_PRINT" }

func (DebugPrint) Check(_, language, content string) []Finding {
	if language != "python" {
		return nil
	}
	if strings.Contains(content, "print(") && !strings.Contains(content, "if __name__") {
		return []Finding{{
			RuleID:   "PY_DEBUG_PRINT",
			Severity: models.SeverityInfo,
			Message:  "Debug prints found. Gate under `if __name__ == '__main__':` or use logging.",
		}}
	}
	return nil
}

// SwallowedError flags content that pairs a bare exception handler with a
// no-op body. Whole-file finding.
type SwallowedError struct{}

func (SwallowedError) ID() string { return "ERR_SWALLOW" }

func (SwallowedError) Check(_, _, content string) []Finding {
	if strings.Contains(content, "except:") && strings.Contains(content, "pass") {
		return []Finding{{
			RuleID:   "ERR_SWALLOW",
			Severity: models.SeverityWarn,
			Message:  "Bare except with pass swallows errors; catch specific exceptions.",
		}}
	}
	return nil
}
