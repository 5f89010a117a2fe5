package summarize

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/cra/internal/models"
	"github.com/joescharf/cra/internal/pack"
)

func TestBuildPromptSections(t *testing.T) {
	issues := []Issue{
		{RuleID: "DOC_TODO_NO_OWNER", Severity: models.SeverityWarn, Message: "TODO without an owner.", Line: intPtr(3), Filename: "a.py"},
	}
	blocks := []pack.Block{
		{Filename: "a.py", Language: "python", Preview: "x = 1\n"},
	}

	system, user := buildPrompt(issues, blocks)

	assert.Contains(t, system, "senior code reviewer")
	assert.Contains(t, user, "- Files attached: 1")
	assert.Contains(t, user, "- Static issues detected: 1")
	assert.Contains(t, user, "- [WARN] DOC_TODO_NO_OWNER: TODO without an owner. (a.py:3)")
	assert.Contains(t, user, "--- a.py [python] ---")
	assert.Contains(t, user, "```python\nx = 1\n\n```")
	assert.Contains(t, user, "Task\n")
}

func TestFormatFindingsEmpty(t *testing.T) {
	assert.Equal(t, "- None", formatFindings(nil))
}

func TestFormatFindingsSeverityOrderStable(t *testing.T) {
	issues := []Issue{
		{RuleID: "INFO_A", Severity: models.SeverityInfo, Message: "i1"},
		{RuleID: "WARN_A", Severity: models.SeverityWarn, Message: "w1"},
		{RuleID: "ERR_A", Severity: models.SeverityError, Message: "e1"},
		{RuleID: "ERR_B", Severity: models.SeverityError, Message: "e2"},
		{RuleID: "INFO_B", Severity: models.SeverityInfo, Message: "i2"},
	}
	out := formatFindings(issues)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "ERR_A")
	assert.Contains(t, lines[1], "ERR_B")
	assert.Contains(t, lines[2], "WARN_A")
	assert.Contains(t, lines[3], "INFO_A")
	assert.Contains(t, lines[4], "INFO_B")
}

func TestFormatFindingsCapsAtTen(t *testing.T) {
	var issues []Issue
	for i := 0; i < 15; i++ {
		issues = append(issues, Issue{
			RuleID:   fmt.Sprintf("R%d", i),
			Severity: models.SeverityInfo,
			Message:  "m",
		})
	}
	// A single error among many infos must survive the cap.
	issues[14].Severity = models.SeverityError

	out := formatFindings(issues)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, maxDigestIssues)
	assert.Contains(t, lines[0], "R14")
}

func TestFormatFindingsLocationVariants(t *testing.T) {
	out := formatFindings([]Issue{
		{RuleID: "A", Severity: models.SeverityWarn, Message: "m", Filename: "f.py", Line: intPtr(7)},
		{RuleID: "B", Severity: models.SeverityWarn, Message: "m", Filename: "f.py"},
		{RuleID: "C", Severity: models.SeverityWarn, Message: "m"},
	})

	assert.Contains(t, out, "(f.py:7)")
	assert.Contains(t, out, "- [WARN] B: m (f.py)")
	assert.True(t, strings.HasSuffix(out, "- [WARN] C: m"))
}

func TestFormatPreviewsEmpty(t *testing.T) {
	assert.Equal(t, "- No code provided.", formatPreviews(nil))
}

func TestFormatIssueLinesEmpty(t *testing.T) {
	assert.Equal(t, "No static issues detected.", formatIssueLines(nil))
}

func TestFormatIssueLines(t *testing.T) {
	out := formatIssueLines([]Issue{
		{RuleID: "A", Severity: models.SeverityError, Message: "m1", Filename: "f.py", Line: intPtr(7)},
		{RuleID: "B", Severity: models.SeverityInfo, Message: "m2"},
	})
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 2)
	assert.Equal(t, "- [ERROR] A in f.py:7 — m1", lines[0])
	assert.Equal(t, "- [INFO] B in ? — m2", lines[1])
}

func TestBuildPayloadPromptSections(t *testing.T) {
	system, user := buildPayloadPrompt(nil, "No files provided.")

	assert.Contains(t, system, "senior code reviewer")
	assert.Contains(t, system, "cross-file issues")
	assert.Contains(t, user, "Project files (truncated when necessary):\n\nNo files provided.")
	assert.Contains(t, user, "Static findings:\nNo static issues detected.")
	assert.Contains(t, user, "- If something is fine, say so briefly.")
}
