package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/autoalloc/internal/fingerprint"
)

// Decision is the audit-relevant slice of a selection decision.
// Exactly the fields that participate in the fingerprint; nothing
// time-dependent belongs here.
type Decision struct {
	Allocator        string
	RuleID           string
	Reason           string
	CPUCores         int
	TotalMemoryBytes uint64
	OS               string
	Arch             string
	ProbeDegraded    bool
}

// Record is one stored audit row.
type Record struct {
	ID          string
	Fingerprint string
	RecordedAt  time.Time
	Decision
}

// ErrEmpty is returned by Latest when no decision has been recorded yet.
var ErrEmpty = errors.New("audit log is empty")

// Fingerprint computes the content-addressed identity of the decision.
// Two runs that made the same decision on the same hardware produce equal
// fingerprints, whatever the wall clock said.
func (d Decision) Fingerprint() (string, error) {
	return fingerprint.Sum(fingerprint.Record{
		"allocator":          d.Allocator,
		"rule_id":            d.RuleID,
		"reason":             d.Reason,
		"cpu_cores":          d.CPUCores,
		"total_memory_bytes": d.TotalMemoryBytes,
		"os":                 d.OS,
		"arch":               d.Arch,
		"probe_degraded":     d.ProbeDegraded,
	})
}

// Append inserts a new audit row for the decision and returns it.
// IDs are UUIDv7, so rows sort by creation time.
func (s *Store) Append(ctx context.Context, d Decision) (Record, error) {
	fp, err := d.Fingerprint()
	if err != nil {
		return Record{}, fmt.Errorf("append decision: %w", err)
	}

	rec := Record{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Fingerprint: fp,
		RecordedAt:  s.clock.Now().UTC().Truncate(time.Second),
		Decision:    d,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decisions
		(id, fingerprint, allocator, rule_id, reason, cpu_cores, total_memory_bytes, os, arch, probe_degraded, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Fingerprint,
		rec.Allocator,
		rec.RuleID,
		rec.Reason,
		rec.CPUCores,
		int64(rec.TotalMemoryBytes),
		rec.OS,
		rec.Arch,
		rec.ProbeDegraded,
		rec.RecordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Record{}, fmt.Errorf("append decision: %w", err)
	}

	return rec, nil
}

// Latest returns the most recently recorded decision, or ErrEmpty.
func (s *Store) Latest(ctx context.Context) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, fingerprint, allocator, rule_id, reason, cpu_cores, total_memory_bytes, os, arch, probe_degraded, recorded_at
		FROM decisions
		ORDER BY id DESC
		LIMIT 1
	`)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrEmpty
	}
	return rec, err
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, fingerprint, allocator, rule_id, reason, cpu_cores, total_memory_bytes, os, arch, probe_degraded, recorded_at
		FROM decisions
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list decisions: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec        Record
		totalMem   int64
		recordedAt string
	)
	err := s.Scan(
		&rec.ID,
		&rec.Fingerprint,
		&rec.Allocator,
		&rec.RuleID,
		&rec.Reason,
		&rec.CPUCores,
		&totalMem,
		&rec.OS,
		&rec.Arch,
		&rec.ProbeDegraded,
		&recordedAt,
	)
	if err != nil {
		return Record{}, err
	}

	rec.TotalMemoryBytes = uint64(totalMem)
	rec.RecordedAt, err = time.Parse(time.RFC3339, recordedAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
	}
	return rec, nil
}
