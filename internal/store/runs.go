package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inodb/vibe-contam/internal/contam"
)

// ErrNoRuns is returned by LatestRun when the database holds no runs.
var ErrNoRuns = errors.New("no runs recorded")

// Run is one recorded contamination estimate.
type Run struct {
	ID               string
	Input            FileFingerprint
	BestLevel        float64
	MaxLogLikelihood float64
	VariantCount     int
	Empty            bool
	CreatedAt        time.Time

	// Written by SaveRun; not loaded by LatestRun.
	Results  []contam.ContamProbResult
	Variants []*contam.VariantPosition
}

// NewRun builds a Run from a finished estimate.
func NewRun(input FileFingerprint, est *contam.Estimate) *Run {
	return &Run{
		Input:            input,
		BestLevel:        est.BestLevel,
		MaxLogLikelihood: est.MaxLogLikelihood,
		VariantCount:     est.VariantCount,
		Empty:            est.Empty,
		Results:          est.Results,
		Variants:         est.Variants,
	}
}

// SaveRun writes run with its likelihoods and variants in one transaction
// and returns the new run id. A zero CreatedAt is set to the current time.
func (s *Store) SaveRun(ctx context.Context, run *Run) (string, error) {
	id := uuid.NewString()
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, input_path, input_size, input_mtime, best_level,
			max_log_likelihood, variant_count, is_empty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.Input.Path, run.Input.Size, unixNano(run.Input.ModTime), run.BestLevel,
		run.MaxLogLikelihood, int64(run.VariantCount), run.Empty, createdAt.UnixNano(),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if err := insertLikelihoods(ctx, tx, id, run.Results); err != nil {
		return "", err
	}
	if err := insertVariants(ctx, tx, id, run.Variants); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}

	run.ID = id
	run.CreatedAt = createdAt
	return id, nil
}

func insertLikelihoods(ctx context.Context, tx *sql.Tx, runID string, results []contam.ContamProbResult) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO likelihoods (run_id, idx, level, log_likelihood) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare likelihood insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range results {
		if _, err := stmt.ExecContext(ctx, runID, int64(i), r.ContaminationLevel, r.LogLikelihood); err != nil {
			return fmt.Errorf("insert likelihood %d: %w", i, err)
		}
	}
	return nil
}

func insertVariants(ctx context.Context, tx *sql.Tx, runID string, variants []*contam.VariantPosition) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO variants (run_id, idx, contig, position, total_read_depth, alt_depth,
			variant_type, zygosity, contamination_label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare variant insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range variants {
		if _, err := stmt.ExecContext(ctx, runID, int64(i), v.Contig, v.Position,
			int64(v.TotalReadDepth), int64(v.AltDepth),
			v.VariantType.String(), v.Zygosity.String(), v.ContaminationLabel,
		); err != nil {
			return fmt.Errorf("insert variant %s: %w", v, err)
		}
	}
	return nil
}

// Likelihoods returns the grid results of a run in grid order.
func (s *Store) Likelihoods(ctx context.Context, runID string) ([]contam.ContamProbResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, log_likelihood FROM likelihoods WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("query likelihoods: %w", err)
	}
	defer rows.Close()

	var results []contam.ContamProbResult
	for rows.Next() {
		var r contam.ContamProbResult
		if err := rows.Scan(&r.ContaminationLevel, &r.LogLikelihood); err != nil {
			return nil, fmt.Errorf("scan likelihood: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likelihoods: %w", err)
	}
	return results, nil
}

// Variants returns the variants of a run in input order.
func (s *Store) Variants(ctx context.Context, runID string) ([]*contam.VariantPosition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT contig, position, total_read_depth, alt_depth, variant_type, zygosity, contamination_label
		FROM variants WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	var variants []*contam.VariantPosition
	for rows.Next() {
		var (
			v                     contam.VariantPosition
			total, alt            int64
			variantType, zygosity string
		)
		if err := rows.Scan(&v.Contig, &v.Position, &total, &alt, &variantType, &zygosity, &v.ContaminationLabel); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		if err := v.VariantType.UnmarshalText([]byte(variantType)); err != nil {
			return nil, fmt.Errorf("variant %s:%d: %w", v.Contig, v.Position, err)
		}
		if err := v.Zygosity.UnmarshalText([]byte(zygosity)); err != nil {
			return nil, fmt.Errorf("variant %s:%d: %w", v.Contig, v.Position, err)
		}
		v.TotalReadDepth, v.AltDepth = int(total), int(alt)
		variants = append(variants, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return variants, nil
}

// LatestRun returns the most recently created run without its likelihoods
// or variants. It returns ErrNoRuns when nothing has been saved.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	var (
		run              Run
		mtime, createdAt int64
		variantCount     int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, input_path, input_size, input_mtime, best_level,
			max_log_likelihood, variant_count, is_empty, created_at
		FROM runs ORDER BY created_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.Input.Path, &run.Input.Size, &mtime, &run.BestLevel,
		&run.MaxLogLikelihood, &variantCount, &run.Empty, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}

	run.VariantCount = int(variantCount)
	if mtime != 0 {
		run.Input.ModTime = time.Unix(0, mtime)
	}
	run.CreatedAt = time.Unix(0, createdAt)
	return &run, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
