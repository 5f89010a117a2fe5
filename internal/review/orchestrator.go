// Package review coordinates the analysis pipeline: static rules over each
// uploaded file, one whole-batch summarization call, and a single atomic
// commit of the resulting aggregate.
package review

import (
	"context"

	"github.com/joescharf/cra/internal/models"
	"github.com/joescharf/cra/internal/pack"
	"github.com/joescharf/cra/internal/rules"
	"github.com/joescharf/cra/internal/store"
	"github.com/joescharf/cra/internal/summarize"
)

// FileInput is one submitted file, already decoded and language-sniffed at
// the upload boundary.
type FileInput struct {
	Filename string
	Language string // "" = unknown
	Content  string
}

// Orchestrator is the only component that persists reviews and the only
// caller of the summarizer.
type Orchestrator struct {
	store      store.Store
	engine     *rules.Engine
	summarizer summarize.Summarizer
}

// New wires an orchestrator.
func New(s store.Store, engine *rules.Engine, sm summarize.Summarizer) *Orchestrator {
	return &Orchestrator{
		store:      s,
		engine:     engine,
		summarizer: sm,
	}
}

// AnalyzeReview runs the pipeline over a non-empty batch. Findings from one
// file never abort the batch, and summarization failures are absorbed by the
// summarizer; only a persistence failure returns an error, in which case
// nothing was committed.
func (o *Orchestrator) AnalyzeReview(ctx context.Context, files []FileInput) (*models.Review, error) {
	r := &models.Review{ID: store.NewID()}

	var promptIssues []summarize.Issue
	packFiles := make([]pack.File, 0, len(files))

	for _, in := range files {
		rf := &models.ReviewFile{
			ID:       store.NewID(),
			ReviewID: r.ID,
			Filename: in.Filename,
			Language: in.Language,
			Content:  in.Content,
		}
		r.Files = append(r.Files, rf)
		packFiles = append(packFiles, pack.File{Filename: in.Filename, Language: in.Language, Content: in.Content})

		// In-file finding order is preserved into issue order.
		for _, f := range o.engine.Run(in.Filename, in.Language, in.Content) {
			r.Issues = append(r.Issues, &models.ReviewIssue{
				ReviewID: r.ID,
				FileID:   rf.ID,
				RuleID:   f.RuleID,
				Severity: f.Severity,
				Message:  f.Message,
				Line:     f.Line,
			})
			promptIssues = append(promptIssues, summarize.Issue{
				RuleID:   f.RuleID,
				Severity: f.Severity,
				Message:  f.Message,
				Line:     f.Line,
				Filename: in.Filename,
			})
		}
	}

	// One whole-batch call so the model can reason across files. The
	// summarizer owns the preview budgets.
	r.Summary, r.LLMUsed = o.summarizer.Summarize(ctx, promptIssues, packFiles)

	if err := o.store.CreateReview(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
