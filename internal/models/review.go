package models

import "time"

// Severity ranks a static finding. Ordering for top-N selection is
// error > warn > info.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityInfo  Severity = "info"
)

// Rank returns the sort rank for a severity; lower sorts first.
// Unknown severities sink to the bottom.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarn:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 99
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s == SeverityError || s == SeverityWarn || s == SeverityInfo
}

// Review is the root aggregate for one analysis run over a batch of
// uploaded files. Files and Issues are created together in a single
// orchestration pass and committed atomically.
type Review struct {
	ID        string
	CreatedAt time.Time
	Summary   string
	LLMUsed   bool
	Files     []*ReviewFile
	Issues    []*ReviewIssue
}

// ReviewFile is one uploaded file belonging to a review. Immutable after
// creation; deleted with its review.
type ReviewFile struct {
	ID       string
	ReviewID string
	Filename string
	Language string // "" = unknown
	Content  string
}

// ReviewIssue is a single static-analysis finding persisted under a review.
// FileID is empty for findings not tied to a stored file; Line is nil for
// whole-file findings.
type ReviewIssue struct {
	ID       string
	ReviewID string
	FileID   string
	RuleID   string
	Severity Severity
	Message  string
	Line     *int
}
