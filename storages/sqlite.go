package storages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/taibf/taibf"
	"github.com/reusee/taibf/traces"
	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	time INTEGER NOT NULL,
	source TEXT NOT NULL,
	program TEXT NOT NULL,
	tape_length INTEGER NOT NULL,
	steps INTEGER NOT NULL,
	output BLOB,
	error TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS states (
	run_id TEXT NOT NULL REFERENCES runs(id),
	step INTEGER NOT NULL,
	pointer INTEGER NOT NULL,
	tape BLOB NOT NULL,
	PRIMARY KEY (run_id, step)
);
`

// DB stores trace records in SQLite, one row per state.
type DB struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	return &DB{
		db: db,
	}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx: tx}, nil
}

func (d *DB) SaveRecord(ctx context.Context, rec *traces.Record) (err error) {
	tx, err := d.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(ctx,
		`INSERT INTO runs (id, time, source, program, tape_length, steps, output, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(),
		rec.Time.UnixNano(),
		rec.Source,
		rec.Program,
		rec.TapeLength,
		rec.Steps,
		[]byte(rec.Output),
		rec.Error,
	); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	for step, state := range rec.States {
		if _, err := tx.Exec(ctx,
			`INSERT INTO states (run_id, step, pointer, tape) VALUES (?, ?, ?, ?)`,
			rec.ID.String(),
			step,
			state.Pointer,
			[]byte(state.Tape),
		); err != nil {
			return fmt.Errorf("saving state %d: %w", step, err)
		}
	}

	return tx.Commit()
}

// ListRuns lists stored runs, oldest first, without their states.
func (d *DB) ListRuns(ctx context.Context) ([]*traces.Record, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, time, source, program, tape_length, steps, output, error
		FROM runs ORDER BY time, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()
	var ret []*traces.Record
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, rec)
	}
	return ret, rows.Err()
}

func (d *DB) LoadRecord(ctx context.Context, id uuid.UUID) (*traces.Record, error) {
	rec, err := scanRun(d.db.QueryRowContext(ctx,
		`SELECT id, time, source, program, tape_length, steps, output, error
		FROM runs WHERE id = ?`,
		id.String(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	} else if err != nil {
		return nil, err
	}
	rec.States, err = d.LoadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (d *DB) LoadHistory(ctx context.Context, id uuid.UUID) (taibf.History, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT pointer, tape FROM states WHERE run_id = ? ORDER BY step`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying states: %w", err)
	}
	defer rows.Close()
	var history taibf.History
	for rows.Next() {
		var state taibf.State
		var tape []byte
		if err := rows.Scan(&state.Pointer, &tape); err != nil {
			return nil, fmt.Errorf("scanning state: %w", err)
		}
		state.Tape = taibf.Tape(tape)
		history = append(history, state)
	}
	return history, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*traces.Record, error) {
	var rec traces.Record
	var id string
	var nanos int64
	var output []byte
	if err := row.Scan(
		&id,
		&nanos,
		&rec.Source,
		&rec.Program,
		&rec.TapeLength,
		&rec.Steps,
		&output,
		&rec.Error,
	); err != nil {
		return nil, err
	}
	var err error
	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("bad run id %q: %w", id, err)
	}
	rec.Time = time.Unix(0, nanos)
	rec.Output = string(output)
	return &rec, nil
}
