package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-attempt-service/internal/docstore"
)

// DocumentStore keeps documents as JSONB rows in the documents table.
// Merge and guarded writes lock the row for the length of the transaction.
type DocumentStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool, now: time.Now}
}

func (s *DocumentStore) Get(ctx context.Context, path string) (docstore.Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM documents WHERE path=$1`, path).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	doc, err := docstore.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

func (s *DocumentStore) Set(ctx context.Context, path string, data docstore.Document, opts ...docstore.SetOption) error {
	o := docstore.BuildOptions(opts)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var (
		current docstore.Document
		exists  bool
	)
	if o.Conditional() {
		var raw []byte
		err := tx.QueryRow(ctx, `SELECT data FROM documents WHERE path=$1 FOR UPDATE`, path).Scan(&raw)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("lock document: %w", err)
		default:
			if current, err = docstore.Decode(raw); err != nil {
				return fmt.Errorf("unmarshal document: %w", err)
			}
			exists = true
		}
	}

	now := s.now().UTC()
	next, err := docstore.Apply(current, exists, data, o, now)
	if err != nil {
		return err
	}
	payload, err := docstore.Encode(next)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	// FOR UPDATE cannot lock a missing row, so a create-only write relies on the
	// primary key instead.
	conflict := `ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	if o.CreateOnly {
		conflict = `ON CONFLICT (path) DO NOTHING`
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO documents (path, collection, data, updated_at)
		VALUES ($1, $2, $3::jsonb, $4)
		`+conflict,
		path, collectionOf(path), string(payload), now)
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if o.CreateOnly && tag.RowsAffected() == 0 {
		return docstore.ErrPreconditionFailed
	}
	return tx.Commit(ctx)
}

func (s *DocumentStore) NewKey(_ string) string {
	return uuid.NewString()
}

// collectionOf returns the parent collection path, e.g. quizzes/q1/attempts for
// quizzes/q1/attempts/a1.
func collectionOf(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i]
	}
	return path
}
