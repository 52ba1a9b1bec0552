package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/assessment"
	"appraisal/internal/domain/registry"
)

// Store is the hosted remote store: one row per assessment with the full
// record as a JSONB payload and denormalized email columns for filtering.
// It implements registry.RemoteStore.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) FetchAll(ctx context.Context) ([]assessment.Assessment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT data, version
    FROM assessments
    ORDER BY updated_at ASC
  `)
	if err != nil {
		return nil, fmt.Errorf("fetch assessments: %w", err)
	}
	defer rows.Close()

	var out []assessment.Assessment
	for rows.Next() {
		var payload []byte
		var version int64
		if err := rows.Scan(&payload, &version); err != nil {
			return nil, fmt.Errorf("fetch assessments: %w", err)
		}
		var rec assessment.Assessment
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode assessment payload: %w", err)
		}
		// The version column is authoritative over whatever the payload says.
		rec.Version = version
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpsertAll writes the whole snapshot keyed by id in one transaction. Equal
// versions rewrite the row (the snapshot includes untouched records); a row
// whose stored version is newer than the incoming one rejects the batch with
// registry.ErrStaleRecord, so a concurrent writer's state is never silently
// overwritten.
func (s *Store) UpsertAll(ctx context.Context, records []assessment.Assessment) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("upsert assessments: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode assessment %s: %w", rec.ID, err)
		}
		tag, err := tx.Exec(ctx, `
      INSERT INTO assessments (id, email, manager_email, data, version, updated_at)
      VALUES ($1, $2, $3, $4, $5, now())
      ON CONFLICT (id) DO UPDATE
      SET email = EXCLUDED.email,
          manager_email = EXCLUDED.manager_email,
          data = EXCLUDED.data,
          version = EXCLUDED.version,
          updated_at = now()
      WHERE assessments.version <= EXCLUDED.version
    `, rec.ID, assessment.NormalizeEmail(rec.EmployeeDetails.Email), assessment.NormalizeEmail(rec.ManagerEmail), payload, rec.Version)
		if err != nil {
			return fmt.Errorf("upsert assessment %s: %w", rec.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("assessment %s: %w", rec.ID, registry.ErrStaleRecord)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("upsert assessments: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.DB.Exec(ctx, "DELETE FROM assessments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete assessment %s: %w", id, err)
	}
	return nil
}
