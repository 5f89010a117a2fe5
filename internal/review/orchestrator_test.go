package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/cra/internal/models"
	"github.com/joescharf/cra/internal/pack"
	"github.com/joescharf/cra/internal/rules"
	"github.com/joescharf/cra/internal/summarize"
)

type fakeStore struct {
	created   []*models.Review
	createErr error
}

func (f *fakeStore) CreateReview(ctx context.Context, r *models.Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, r)
	return nil
}

func (f *fakeStore) GetReview(ctx context.Context, id string) (*models.Review, error) {
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("review not found: " + id)
}

func (f *fakeStore) ListReviews(ctx context.Context) ([]*models.Review, error) {
	return f.created, nil
}

func (f *fakeStore) DeleteReview(ctx context.Context, id string) error { return nil }
func (f *fakeStore) Migrate(ctx context.Context) error                 { return nil }
func (f *fakeStore) Close() error                                      { return nil }

type recordingSummarizer struct {
	issues []summarize.Issue
	files  []pack.File
}

func (r *recordingSummarizer) Summarize(ctx context.Context, issues []summarize.Issue, files []pack.File) (string, bool) {
	r.issues = issues
	r.files = files
	return "Summary:\n- test", false
}

func newOrchestrator(s *fakeStore, sm summarize.Summarizer) *Orchestrator {
	return New(s, rules.Default(), sm)
}

func TestAnalyzeReviewLinksIssuesToFiles(t *testing.T) {
	fs := &fakeStore{}
	sm := &recordingSummarizer{}
	orch := newOrchestrator(fs, sm)

	files := []FileInput{
		{Filename: "clean.py", Language: "python", Content: "x = 1\n"},
		{Filename: "messy.py", Language: "python", Content: "# TODO fix this\nprint('x')\n"},
	}
	r, err := orch.AnalyzeReview(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, r.Files, 2)
	assert.Equal(t, "clean.py", r.Files[0].Filename)
	assert.Equal(t, "messy.py", r.Files[1].Filename)
	for _, f := range r.Files {
		assert.NotEmpty(t, f.ID)
		assert.Equal(t, r.ID, f.ReviewID)
	}

	require.Len(t, r.Issues, 2)
	for _, issue := range r.Issues {
		assert.Equal(t, r.Files[1].ID, issue.FileID)
		assert.Equal(t, r.ID, issue.ReviewID)
	}
	assert.Equal(t, "DOC_TODO_NO_OWNER", r.Issues[0].RuleID)
	assert.Equal(t, "PY_DEBUG_PRINT", r.Issues[1].RuleID)
}

func TestAnalyzeReviewPassesIssuesAndFilesToSummarizer(t *testing.T) {
	fs := &fakeStore{}
	sm := &recordingSummarizer{}
	orch := newOrchestrator(fs, sm)

	files := []FileInput{
		{Filename: "a.py", Language: "python", Content: "# TODO fix\n"},
		{Filename: "b.txt", Content: "hello\n"},
	}
	r, err := orch.AnalyzeReview(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, sm.issues, 1)
	assert.Equal(t, "DOC_TODO_NO_OWNER", sm.issues[0].RuleID)
	assert.Equal(t, "a.py", sm.issues[0].Filename)

	require.Len(t, sm.files, 2)
	assert.Equal(t, "a.py", sm.files[0].Filename)
	assert.Equal(t, "python", sm.files[0].Language)
	assert.Equal(t, "hello\n", sm.files[1].Content)

	assert.Equal(t, "Summary:\n- test", r.Summary)
	assert.False(t, r.LLMUsed)
}

func TestAnalyzeReviewPersistsAggregate(t *testing.T) {
	fs := &fakeStore{}
	orch := newOrchestrator(fs, &recordingSummarizer{})

	r, err := orch.AnalyzeReview(context.Background(), []FileInput{
		{Filename: "a.py", Language: "python", Content: "x = 1\n"},
	})
	require.NoError(t, err)

	require.Len(t, fs.created, 1)
	assert.Same(t, r, fs.created[0])
	assert.NotEmpty(t, r.ID)
}

func TestAnalyzeReviewStoreFailure(t *testing.T) {
	fs := &fakeStore{createErr: errors.New("disk full")}
	orch := newOrchestrator(fs, &recordingSummarizer{})

	r, err := orch.AnalyzeReview(context.Background(), []FileInput{
		{Filename: "a.py", Language: "python", Content: "x = 1\n"},
	})

	require.Error(t, err)
	assert.Nil(t, r)
	assert.Empty(t, fs.created)
}

func TestAnalyzeReviewCleanBatchUsesFallbackSummary(t *testing.T) {
	fs := &fakeStore{}
	orch := newOrchestrator(fs, summarize.New(summarize.Config{Enabled: false}))

	r, err := orch.AnalyzeReview(context.Background(), []FileInput{
		{Filename: "a.py", Language: "python", Content: "x = 1\n"},
	})
	require.NoError(t, err)

	assert.False(t, r.LLMUsed)
	assert.Contains(t, r.Summary, "No critical issues")
}
