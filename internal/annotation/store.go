package annotation

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"codeberg.org/mutker/poolwatch/internal/errors"
	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed annotation log. Records are write-once; external
// events carrying a stable identifier are deduplicated on insert.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore initializes the annotation schema on an open database handle. The
// handle is shared with the telemetry repository and closed by its owner.
func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS annotations (
            id          TEXT PRIMARY KEY,
            external_id TEXT UNIQUE,
            category    TEXT NOT NULL,
            title       TEXT NOT NULL,
            description TEXT,
            starts_at   INTEGER NOT NULL,
            ends_at     INTEGER,
            metadata    TEXT
        )
    `)
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageInit, err)
	}

	return &Store{db: db}, nil
}

// Open opens a dedicated database file for annotations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL")
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageInit, err)
	}

	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Add stores one annotation. A missing ID is generated; an annotation whose
// ExternalID matches an existing row is silently dropped.
func (s *Store) Add(ctx context.Context, a Annotation) error {
	errFactory := errors.New()

	if a.StartsAt.IsZero() {
		return errFactory.WithMessage(ErrInvalidAnnotation, "annotation requires a timestamp")
	}
	if a.Category == "" || a.Title == "" {
		return errFactory.WithMessage(ErrInvalidAnnotation, "annotation requires a category and title")
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	var metadata sql.NullString
	if len(a.Metadata) > 0 {
		raw, err := json.Marshal(a.Metadata)
		if err != nil {
			return errFactory.Wrap(ErrInvalidAnnotation, err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}

	var externalID sql.NullString
	if a.ExternalID != "" {
		externalID = sql.NullString{String: a.ExternalID, Valid: true}
	}

	var endsAt sql.NullInt64
	if a.EndsAt != nil {
		endsAt = sql.NullInt64{Int64: a.EndsAt.Unix(), Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO annotations (
            id, external_id, category, title, description, starts_at, ends_at, metadata
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(external_id) DO NOTHING
    `,
		a.ID,
		externalID,
		a.Category,
		a.Title,
		a.Description,
		a.StartsAt.Unix(),
		endsAt,
		metadata,
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

// QueryRange returns annotations overlapping [from, to] in ascending start
// order. Range events match when any part of their span falls in the window.
func (s *Store) QueryRange(ctx context.Context, from, to time.Time) ([]Annotation, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, external_id, category, title, description, starts_at, ends_at, metadata
        FROM annotations
        WHERE starts_at <= ? AND COALESCE(ends_at, starts_at) >= ?
        ORDER BY starts_at ASC
    `, to.Unix(), from.Unix())
	if err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var result []Annotation
	for rows.Next() {
		var (
			a          Annotation
			externalID sql.NullString
			desc       sql.NullString
			startsAt   int64
			endsAt     sql.NullInt64
			metadata   sql.NullString
		)
		if err := rows.Scan(&a.ID, &externalID, &a.Category, &a.Title, &desc, &startsAt, &endsAt, &metadata); err != nil {
			return nil, errors.New().Wrap(ErrStorageAccess, err)
		}

		a.ExternalID = externalID.String
		a.Description = desc.String
		a.StartsAt = time.Unix(startsAt, 0).UTC()
		if endsAt.Valid {
			t := time.Unix(endsAt.Int64, 0).UTC()
			a.EndsAt = &t
		}
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &a.Metadata); err != nil {
				return nil, errors.New().Wrap(ErrStorageAccess, err)
			}
		}

		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New().Wrap(ErrStorageAccess, err)
	}

	return result, nil
}
