package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

const selectRunColumns = `
	SELECT id, root_directory, query, mode, output_directory, state, error,
		documents_total, documents_scanned, documents_skipped, total_matches,
		files_produced, output_paths, started_at, elapsed_ms
	FROM scan_runs`

// Save stores or replaces a run record together with its matches.
func (s *historyStore) Save(ctx context.Context, record *domain.ScanRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("%w: run record without id", domain.ErrInvalidInput)
	}

	outputs := record.OutputPaths
	if outputs == nil {
		outputs = []string{}
	}
	outputsJSON, err := json.Marshal(outputs)
	if err != nil {
		return fmt.Errorf("marshalling output paths: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scan_runs (id, root_directory, query, mode, output_directory, state, error,
			documents_total, documents_scanned, documents_skipped, total_matches,
			files_produced, output_paths, started_at, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			root_directory = excluded.root_directory,
			query = excluded.query,
			mode = excluded.mode,
			output_directory = excluded.output_directory,
			state = excluded.state,
			error = excluded.error,
			documents_total = excluded.documents_total,
			documents_scanned = excluded.documents_scanned,
			documents_skipped = excluded.documents_skipped,
			total_matches = excluded.total_matches,
			files_produced = excluded.files_produced,
			output_paths = excluded.output_paths,
			started_at = excluded.started_at,
			elapsed_ms = excluded.elapsed_ms
	`, record.ID, record.RootDirectory, record.Query, string(record.Mode), record.OutputDirectory,
		string(record.State), record.Error,
		record.DocumentsTotal, record.DocumentsScanned, record.DocumentsSkipped, record.TotalMatches,
		record.FilesProduced, string(outputsJSON), record.StartedAt.UTC(), record.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_matches WHERE run_id = ?", record.ID); err != nil {
		return fmt.Errorf("clearing matches: %w", err)
	}

	if len(record.Matches) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO run_matches (run_id, seq, document_path, page_index) VALUES (?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("preparing match insert: %w", err)
		}
		defer stmt.Close()

		for i, m := range record.Matches {
			if _, err := stmt.ExecContext(ctx, record.ID, i, m.DocumentPath, m.PageIndex); err != nil {
				return fmt.Errorf("saving match: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID, including its matches.
func (s *historyStore) Get(ctx context.Context, id string) (*domain.ScanRecord, error) {
	row := s.store.db.QueryRowContext(ctx, selectRunColumns+" WHERE id = ?", id)

	record, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	matches, err := s.matches(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Matches = matches
	return record, nil
}

// List returns runs, most recent first. Matches are loaded for every run.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	query := selectRunColumns + " ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	var records []domain.ScanRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	rows.Close()

	for i := range records {
		matches, err := s.matches(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Matches = matches
	}
	return records, nil
}

// Prune deletes all but the most recent keep runs.
func (s *historyStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	res, err := s.store.db.ExecContext(ctx, `
		DELETE FROM scan_runs WHERE id NOT IN (
			SELECT id FROM scan_runs ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return int(n), nil
}

func (s *historyStore) matches(ctx context.Context, runID string) ([]domain.PageMatch, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT document_path, page_index FROM run_matches WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("loading matches: %w", err)
	}
	defer rows.Close()

	var out []domain.PageMatch
	for rows.Next() {
		var m domain.PageMatch
		if err := rows.Scan(&m.DocumentPath, &m.PageIndex); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.ScanRecord, error) {
	var record domain.ScanRecord
	var mode, state, outputsJSON string
	var startedAt sql.NullTime
	var elapsedMS int64

	err := row.Scan(&record.ID, &record.RootDirectory, &record.Query, &mode, &record.OutputDirectory,
		&state, &record.Error,
		&record.DocumentsTotal, &record.DocumentsScanned, &record.DocumentsSkipped, &record.TotalMatches,
		&record.FilesProduced, &outputsJSON, &startedAt, &elapsedMS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	record.Mode = domain.Mode(mode)
	record.State = domain.RunState(state)
	record.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if startedAt.Valid {
		record.StartedAt = startedAt.Time
	}
	if err := json.Unmarshal([]byte(outputsJSON), &record.OutputPaths); err != nil {
		return nil, fmt.Errorf("unmarshaling output paths: %w", err)
	}
	return &record, nil
}
