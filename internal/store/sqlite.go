package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/cra/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// preventing "database is locked" errors from concurrent HTTP requests.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys so deleting a review cascades to files and issues
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NewID generates a new ULID string. Exposed so the orchestrator can link
// issues to their file ids before the aggregate is persisted.
func NewID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Reviews ---

// CreateReview persists a review with all its files and issues in one
// transaction. Partial aggregates are never visible: any failure rolls the
// whole batch back.
func (s *SQLiteStore) CreateReview(ctx context.Context, r *models.Review) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reviews (id, created_at, summary, llm_used) VALUES (?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.Summary, boolToInt(r.LLMUsed),
	)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}

	for i, f := range r.Files {
		if f.ID == "" {
			f.ID = NewID()
		}
		f.ReviewID = r.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO review_files (id, review_id, filename, language, content, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			f.ID, f.ReviewID, f.Filename, nullString(f.Language), f.Content, i,
		)
		if err != nil {
			return fmt.Errorf("create review file: %w", err)
		}
	}

	for i, issue := range r.Issues {
		if issue.ID == "" {
			issue.ID = NewID()
		}
		issue.ReviewID = r.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO review_issues (id, review_id, file_id, rule_id, severity, message, line, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			issue.ID, issue.ReviewID, nullString(issue.FileID), issue.RuleID,
			string(issue.Severity), issue.Message, issue.Line, i,
		)
		if err != nil {
			return fmt.Errorf("create review issue: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetReview loads a review aggregate with files and issues in their
// original order.
func (s *SQLiteStore) GetReview(ctx context.Context, id string) (*models.Review, error) {
	r := &models.Review{}
	var llmUsed int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, summary, llm_used FROM reviews WHERE id = ?`, id,
	).Scan(&r.ID, &r.CreatedAt, &r.Summary, &llmUsed)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("review not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	r.LLMUsed = llmUsed != 0

	if r.Files, err = s.reviewFiles(ctx, r.ID); err != nil {
		return nil, err
	}
	if r.Issues, err = s.reviewIssues(ctx, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// ListReviews returns all review aggregates, most recent first. ULIDs are
// time-ordered, so id descending is creation order descending.
func (s *SQLiteStore) ListReviews(ctx context.Context) ([]*models.Review, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM reviews ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan review id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reviews := make([]*models.Review, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetReview(ctx, id)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

// DeleteReview removes a review; files and issues cascade via foreign keys.
func (s *SQLiteStore) DeleteReview(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("review not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) reviewFiles(ctx context.Context, reviewID string) ([]*models.ReviewFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, review_id, filename, language, content FROM review_files
		WHERE review_id = ? ORDER BY position`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list review files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []*models.ReviewFile
	for rows.Next() {
		f := &models.ReviewFile{}
		var language sql.NullString
		if err := rows.Scan(&f.ID, &f.ReviewID, &f.Filename, &language, &f.Content); err != nil {
			return nil, fmt.Errorf("scan review file: %w", err)
		}
		f.Language = language.String
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *SQLiteStore) reviewIssues(ctx context.Context, reviewID string) ([]*models.ReviewIssue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, review_id, file_id, rule_id, severity, message, line FROM review_issues
		WHERE review_id = ? ORDER BY position`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list review issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var issues []*models.ReviewIssue
	for rows.Next() {
		issue := &models.ReviewIssue{}
		var fileID sql.NullString
		var severity string
		var line sql.NullInt64
		if err := rows.Scan(&issue.ID, &issue.ReviewID, &fileID, &issue.RuleID,
			&severity, &issue.Message, &line); err != nil {
			return nil, fmt.Errorf("scan review issue: %w", err)
		}
		issue.FileID = fileID.String
		issue.Severity = models.Severity(severity)
		if line.Valid {
			n := int(line.Int64)
			issue.Line = &n
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// nullString maps "" to NULL so optional columns round-trip as absent.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
