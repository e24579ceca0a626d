package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Content statuses.
const (
	StatusDraft     = "draft"
	StatusReviewing = "reviewing"
	StatusPublished = "published"
)

// Proposal statuses.
const (
	ProposalProposed  = "proposed"
	ProposalAccepted  = "accepted"
	ProposalRejected  = "rejected"
	ProposalCompleted = "completed"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ContentRecord is a persisted piece of generated content.
type ContentRecord struct {
	ID            string
	Title         string
	Body          string
	ContentType   string
	Topic         string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	WordCount     int
	RevisionCount int
	MetadataJSON  string
	MediumURL     string
	Teaser        string
}

// EditRecord captures one original/edited pair fed to style learning.
type EditRecord struct {
	ID           string
	ContentID    string
	OriginalHash string
	EditedHash   string
	AnalysisJSON string
	CreatedAt    time.Time
}

// ResearchRecord is a persisted article analysis.
type ResearchRecord struct {
	ID                string
	URL               string
	Title             string
	Source            string
	RelevanceScore    float64
	Summary           string
	ContentAnglesJSON string
	FetchedAt         time.Time
	ContentHash       string
}

// ProposalRecord is a persisted topic proposal.
type ProposalRecord struct {
	ID                 string
	Title              string
	ContentType        string
	Angle              string
	Urgency            string
	Status             string
	SourceArticlesJSON string
	CreatedAt          time.Time
}

// ContentStore provides typed access to the content tables.
type ContentStore struct {
	db *DB
}

// NewContentStore wraps a migrated database.
func NewContentStore(db *DB) *ContentStore {
	return &ContentStore{db: db}
}

// SaveContent inserts a new record, assigning its id and timestamps.
func (s *ContentStore) SaveContent(ctx context.Context, rec *ContentRecord) error {
	rec.ID = NewUUID()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = StatusDraft
	}
	if rec.MetadataJSON == "" {
		rec.MetadataJSON = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_records
			(id, title, body, content_type, topic, status, created_at, updated_at,
			 word_count, revision_count, metadata_json, medium_url, teaser)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.Title, rec.Body, rec.ContentType, rec.Topic, rec.Status,
		rec.CreatedAt, rec.UpdatedAt, rec.WordCount, rec.RevisionCount,
		rec.MetadataJSON, rec.MediumURL, rec.Teaser,
	)
	if err != nil {
		return fmt.Errorf("save content: %w", err)
	}
	return nil
}

// GetContent fetches one record by id.
func (s *ContentStore) GetContent(ctx context.Context, id string) (*ContentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, body, content_type, topic, status, created_at, updated_at,
		       word_count, revision_count, metadata_json, medium_url, teaser
		FROM content_records WHERE id = $1`, id)

	rec, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return rec, nil
}

// ListContentByStatus returns records with the given status, newest first.
func (s *ContentStore) ListContentByStatus(ctx context.Context, status string) ([]*ContentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, content_type, topic, status, created_at, updated_at,
		       word_count, revision_count, metadata_json, medium_url, teaser
		FROM content_records WHERE status = $1
		ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var records []*ContentRecord
	for rows.Next() {
		rec, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("list content: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkPublished moves a record to published and stores the Medium URL and
// teaser.
func (s *ContentStore) MarkPublished(ctx context.Context, id, mediumURL, teaser string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE content_records
		SET status = $1, medium_url = $2, teaser = $3, updated_at = $4
		WHERE id = $5`,
		StatusPublished, mediumURL, teaser, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveEdit inserts an edit record, assigning its id and timestamp.
func (s *ContentStore) SaveEdit(ctx context.Context, rec *EditRecord) error {
	rec.ID = NewUUID()
	rec.CreatedAt = time.Now().UTC()
	if rec.AnalysisJSON == "" {
		rec.AnalysisJSON = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO edit_records (id, content_id, original_hash, edited_hash, analysis_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, NullString(rec.ContentID), rec.OriginalHash, rec.EditedHash,
		rec.AnalysisJSON, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save edit: %w", err)
	}
	return nil
}

// SaveAnalysis inserts a research record, assigning its id and timestamp.
func (s *ContentStore) SaveAnalysis(ctx context.Context, rec *ResearchRecord) error {
	rec.ID = NewUUID()
	rec.FetchedAt = time.Now().UTC()
	if rec.ContentAnglesJSON == "" {
		rec.ContentAnglesJSON = "[]"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO research_records
			(id, url, title, source, relevance_score, summary, content_angles_json, fetched_at, content_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.URL, rec.Title, rec.Source, rec.RelevanceScore,
		rec.Summary, rec.ContentAnglesJSON, rec.FetchedAt, rec.ContentHash,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// IsKnownArticle reports whether an article hash was analyzed before.
func (s *ContentStore) IsKnownArticle(ctx context.Context, contentHash string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM research_records WHERE content_hash = $1`, contentHash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check article: %w", err)
	}
	return n > 0, nil
}

// SaveProposals inserts topic proposals, assigning ids and timestamps.
func (s *ContentStore) SaveProposals(ctx context.Context, recs []*ProposalRecord) error {
	now := time.Now().UTC()
	for _, rec := range recs {
		rec.ID = NewUUID()
		rec.CreatedAt = now
		if rec.Status == "" {
			rec.Status = ProposalProposed
		}
		if rec.Urgency == "" {
			rec.Urgency = "medium"
		}
		if rec.SourceArticlesJSON == "" {
			rec.SourceArticlesJSON = "[]"
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO topic_proposals
				(id, title, content_type, angle, urgency, status, source_articles_json, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.ID, rec.Title, rec.ContentType, rec.Angle, rec.Urgency,
			rec.Status, rec.SourceArticlesJSON, rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("save proposal %q: %w", rec.Title, err)
		}
	}
	return nil
}

// ListProposals returns proposals with the given status, newest first.
func (s *ContentStore) ListProposals(ctx context.Context, status string) ([]*ProposalRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content_type, angle, urgency, status, source_articles_json, created_at
		FROM topic_proposals WHERE status = $1
		ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var records []*ProposalRecord
	for rows.Next() {
		rec := &ProposalRecord{}
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.ContentType, &rec.Angle,
			&rec.Urgency, &rec.Status, &rec.SourceArticlesJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("list proposals: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*ContentRecord, error) {
	rec := &ContentRecord{}
	err := row.Scan(&rec.ID, &rec.Title, &rec.Body, &rec.ContentType, &rec.Topic,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt, &rec.WordCount,
		&rec.RevisionCount, &rec.MetadataJSON, &rec.MediumURL, &rec.Teaser)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
