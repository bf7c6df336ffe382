package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/qsearch/internal/circuit"
	"github.com/roach88/qsearch/internal/job"
)

var (
	// ErrNotFound is returned when no job has the requested ID.
	ErrNotFound = errors.New("job not found")

	// ErrConflict is returned when a transition is not allowed from the
	// job's current status, e.g. completing a job that was cancelled.
	ErrConflict = errors.New("job status conflict")
)

// Record is one row of the jobs table.
type Record struct {
	ID           string
	Seq          int64
	Backend      string
	Status       job.Status
	Shots        int
	Circuit      *circuit.Spec
	CircuitHash  string
	Counts       circuit.Histogram // set once DONE
	ErrorMessage string            // set once ERROR
	SubmittedAt  time.Time
	UpdatedAt    time.Time
}

const recordColumns = `seq, id, backend, status, shots, circuit, circuit_hash, counts, error_message, submitted_at, updated_at`

// Insert stores a new job in QUEUED status and returns the stored record.
// Inserting an ID twice is an error.
func (s *Store) Insert(ctx context.Context, id, backend string, spec *circuit.Spec, shots int) (Record, error) {
	circuitJSON, err := circuit.MarshalCanonical(spec)
	if err != nil {
		return Record{}, fmt.Errorf("insert job: %w", err)
	}
	hash, err := circuit.Fingerprint(spec)
	if err != nil {
		return Record{}, fmt.Errorf("insert job: %w", err)
	}

	now := s.clock.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs
		(id, backend, status, shots, circuit, circuit_hash, submitted_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		backend,
		string(job.StatusQueued),
		shots,
		string(circuitJSON),
		hash,
		now.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert job: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("insert job: %w", err)
	}

	return Record{
		ID:          id,
		Seq:         seq,
		Backend:     backend,
		Status:      job.StatusQueued,
		Shots:       shots,
		Circuit:     spec,
		CircuitHash: hash,
		SubmittedAt: time.UnixMilli(now.UnixMilli()).UTC(),
		UpdatedAt:   time.UnixMilli(now.UnixMilli()).UTC(),
	}, nil
}

// Get returns the job with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM jobs WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get job %s: %w", id, err)
	}
	return rec, nil
}

// ClaimNext moves the oldest QUEUED job to RUNNING and returns it.
// ok is false when the queue is empty.
func (s *Store) ClaimNext(ctx context.Context) (rec Record, ok bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, false, fmt.Errorf("claim job: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM jobs
		WHERE status = ?
		ORDER BY seq ASC
		LIMIT 1
	`, string(job.StatusQueued))
	rec, err = scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("claim job: %w", err)
	}

	now := s.clock.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, `
		UPDATE jobs SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(job.StatusRunning), now, rec.ID, string(job.StatusQueued)); err != nil {
		return Record{}, false, fmt.Errorf("claim job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, false, fmt.Errorf("claim job: %w", err)
	}

	rec.Status = job.StatusRunning
	rec.UpdatedAt = time.UnixMilli(now).UTC()
	return rec, true, nil
}

// Complete records the counts of a RUNNING job and marks it DONE.
func (s *Store) Complete(ctx context.Context, id string, counts circuit.Histogram) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("complete job %s: %w", id, err)
	}
	return s.transition(ctx, "complete", id, job.StatusDone,
		[]job.Status{job.StatusRunning},
		"counts = ?", string(data))
}

// Fail marks a QUEUED or RUNNING job as ERROR with the given message.
func (s *Store) Fail(ctx context.Context, id, message string) error {
	return s.transition(ctx, "fail", id, job.StatusError,
		[]job.Status{job.StatusQueued, job.StatusRunning},
		"error_message = ?", message)
}

// Cancel marks a QUEUED or RUNNING job as CANCELLED.
// A worker finishing a cancelled job gets ErrConflict from Complete or Fail.
func (s *Store) Cancel(ctx context.Context, id string) error {
	return s.transition(ctx, "cancel", id, job.StatusCancelled,
		[]job.Status{job.StatusQueued, job.StatusRunning}, "")
}

// Requeue moves every RUNNING job back to QUEUED. Called at startup so work
// interrupted by a crash is picked up again.
func (s *Store) Requeue(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, updated_at = ?
		WHERE status = ?
	`, string(job.StatusQueued), s.clock.Now().UTC().UnixMilli(), string(job.StatusRunning))
	if err != nil {
		return 0, fmt.Errorf("requeue jobs: %w", err)
	}
	return res.RowsAffected()
}

// ListByStatus returns all jobs in the given status, oldest first.
// Returns an empty slice (not nil) when none match.
func (s *Store) ListByStatus(ctx context.Context, status job.Status) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM jobs
		WHERE status = ?
		ORDER BY seq ASC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return records, nil
}

// transition applies UPDATE ... WHERE status IN (from) and distinguishes a
// missing job from a disallowed transition.
func (s *Store) transition(ctx context.Context, op, id string, to job.Status, from []job.Status, setExtra string, extra ...any) error {
	query := `UPDATE jobs SET status = ?, updated_at = ?`
	args := []any{string(to), s.clock.Now().UTC().UnixMilli()}
	if setExtra != "" {
		query += ", " + setExtra
		args = append(args, extra...)
	}
	query += ` WHERE id = ? AND status IN (`
	args = append(args, id)
	for i, st := range from {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args = append(args, string(st))
	}
	query += ")"

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s job %s: %w", op, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s job %s: %w", op, id, err)
	}
	if n > 0 {
		return nil
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s job %s: %w", op, id, ErrNotFound)
	}
	return fmt.Errorf("%s job %s in status %s: %w", op, id, current.Status, ErrConflict)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec         Record
		status      string
		circuitJSON string
		counts      sql.NullString
		submittedAt int64
		updatedAt   int64
	)
	err := row.Scan(
		&rec.Seq,
		&rec.ID,
		&rec.Backend,
		&status,
		&rec.Shots,
		&circuitJSON,
		&rec.CircuitHash,
		&counts,
		&rec.ErrorMessage,
		&submittedAt,
		&updatedAt,
	)
	if err != nil {
		return Record{}, err
	}

	rec.Status, err = job.ParseStatus(status)
	if err != nil {
		return Record{}, err
	}

	var spec circuit.Spec
	if err := json.Unmarshal([]byte(circuitJSON), &spec); err != nil {
		return Record{}, fmt.Errorf("unmarshal circuit: %w", err)
	}
	rec.Circuit = &spec

	if counts.Valid && counts.String != "" {
		if err := json.Unmarshal([]byte(counts.String), &rec.Counts); err != nil {
			return Record{}, fmt.Errorf("unmarshal counts: %w", err)
		}
	}

	rec.SubmittedAt = time.UnixMilli(submittedAt).UTC()
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return rec, nil
}
