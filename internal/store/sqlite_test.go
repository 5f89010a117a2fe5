package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/cra/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func intPtr(n int) *int { return &n }

func sampleReview() *models.Review {
	fileA := &models.ReviewFile{ID: NewID(), Filename: "app.py", Language: "python", Content: "print('x')\n"}
	fileB := &models.ReviewFile{ID: NewID(), Filename: "notes.txt", Language: "", Content: "todo\n"}
	return &models.Review{
		Summary: "Summary:\n- looks fine",
		LLMUsed: true,
		Files:   []*models.ReviewFile{fileA, fileB},
		Issues: []*models.ReviewIssue{
			{FileID: fileA.ID, RuleID: "PY_DEBUG_PRINT", Severity: models.SeverityInfo, Message: "Debug prints found."},
			{FileID: fileA.ID, RuleID: "STYLE_LONG_LINE", Severity: models.SeverityInfo, Message: "Line exceeds 120 chars.", Line: intPtr(1)},
			{FileID: fileB.ID, RuleID: "DOC_TODO_NO_OWNER", Severity: models.SeverityWarn, Message: "TODO without an owner.", Line: intPtr(1)},
		},
	}
}

func TestCreateAndGetReview(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := sampleReview()
	require.NoError(t, s.CreateReview(ctx, r))
	require.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := s.GetReview(ctx, r.ID)
	require.NoError(t, err)

	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, "Summary:\n- looks fine", got.Summary)
	assert.True(t, got.LLMUsed)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, 5*time.Second)

	require.Len(t, got.Files, 2)
	assert.Equal(t, "app.py", got.Files[0].Filename)
	assert.Equal(t, "python", got.Files[0].Language)
	assert.Equal(t, "print('x')\n", got.Files[0].Content)
	assert.Equal(t, "notes.txt", got.Files[1].Filename)
	assert.Equal(t, "", got.Files[1].Language)

	require.Len(t, got.Issues, 3)
	assert.Equal(t, "PY_DEBUG_PRINT", got.Issues[0].RuleID)
	assert.Nil(t, got.Issues[0].Line)
	assert.Equal(t, got.Files[0].ID, got.Issues[0].FileID)
	assert.Equal(t, "STYLE_LONG_LINE", got.Issues[1].RuleID)
	require.NotNil(t, got.Issues[1].Line)
	assert.Equal(t, 1, *got.Issues[1].Line)
	assert.Equal(t, models.SeverityWarn, got.Issues[2].Severity)
	assert.Equal(t, got.Files[1].ID, got.Issues[2].FileID)
}

func TestGetReviewNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetReview(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review not found")
}

func TestCreateReviewAssignsIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := &models.Review{
		Summary: "s",
		Files:   []*models.ReviewFile{{Filename: "a.py", Content: "x"}},
		Issues:  []*models.ReviewIssue{{RuleID: "R", Severity: models.SeverityInfo, Message: "m"}},
	}
	require.NoError(t, s.CreateReview(ctx, r))

	assert.NotEmpty(t, r.ID)
	assert.NotEmpty(t, r.Files[0].ID)
	assert.Equal(t, r.ID, r.Files[0].ReviewID)
	assert.NotEmpty(t, r.Issues[0].ID)
	assert.Equal(t, r.ID, r.Issues[0].ReviewID)
}

func TestListReviewsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.Review{Summary: "first"}
	require.NoError(t, s.CreateReview(ctx, first))
	time.Sleep(5 * time.Millisecond)
	second := &models.Review{Summary: "second"}
	require.NoError(t, s.CreateReview(ctx, second))

	reviews, err := s.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, second.ID, reviews[0].ID)
	assert.Equal(t, first.ID, reviews[1].ID)
}

func TestListReviewsEmpty(t *testing.T) {
	s := newTestStore(t)
	reviews, err := s.ListReviews(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestDeleteReviewCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := sampleReview()
	require.NoError(t, s.CreateReview(ctx, r))
	require.NoError(t, s.DeleteReview(ctx, r.ID))

	_, err := s.GetReview(ctx, r.ID)
	require.Error(t, err)

	var fileCount, issueCount int
	require.NoError(t, s.db.QueryRow(
		"SELECT COUNT(*) FROM review_files WHERE review_id = ?", r.ID).Scan(&fileCount))
	require.NoError(t, s.db.QueryRow(
		"SELECT COUNT(*) FROM review_issues WHERE review_id = ?", r.ID).Scan(&issueCount))
	assert.Zero(t, fileCount)
	assert.Zero(t, issueCount)
}

func TestDeleteReviewNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.DeleteReview(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review not found")
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))

	r := sampleReview()
	require.NoError(t, s.CreateReview(ctx, r))
}

func TestNewIDOrdering(t *testing.T) {
	a := NewID()
	time.Sleep(2 * time.Millisecond)
	b := NewID()

	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}
