// Package sqlite records simulation frames into a SQLite database so runs can
// be replayed or inspected with ordinary SQL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/verletnet/internal/sim"

	_ "modernc.org/sqlite"
)

// Recorder stores runs and their sampled frames.
type Recorder struct {
	db *sql.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &Recorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return r, nil
}

func (r *Recorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		mode TEXT NOT NULL,
		dt REAL NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS frames (
		run_id INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		time REAL NOT NULL,
		node INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL,
		PRIMARY KEY (run_id, tick, node),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_frames_run_tick ON frames(run_id, tick);
	`

	_, err := r.db.Exec(schema)
	return err
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

type Run struct {
	ID        int64
	Name      string
	Width     int
	Height    int
	Mode      string
	Dt        float64
	CreatedAt time.Time
	Frames    int
}

// BeginRun registers a run and returns its id.
func (r *Recorder) BeginRun(ctx context.Context, run Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (name, width, height, mode, dt, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.Name, run.Width, run.Height, run.Mode, run.Dt, run.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return res.LastInsertId()
}

// WriteFrame stores the positions of one tick in a single transaction.
func (r *Recorder) WriteFrame(ctx context.Context, runID int64, tick int, t float64, positions []mgl64.Vec3) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO frames (run_id, tick, time, node, x, y, z) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range positions {
		if _, err := stmt.ExecContext(ctx, runID, tick, t, i, p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("failed to insert node %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Runs lists recorded runs, newest last, with their frame counts.
func (r *Recorder) Runs(ctx context.Context) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.width, r.height, r.mode, r.dt, r.created_at,
			(SELECT COUNT(DISTINCT tick) FROM frames f WHERE f.run_id = r.id)
		FROM runs r
		ORDER BY r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Name, &run.Width, &run.Height, &run.Mode, &run.Dt, &run.CreatedAt, &run.Frames); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Ticks returns the recorded ticks of a run in order.
func (r *Recorder) Ticks(ctx context.Context, runID int64) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT tick FROM frames WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var ticks []int
	for rows.Next() {
		var tick int
		if err := rows.Scan(&tick); err != nil {
			return nil, err
		}
		ticks = append(ticks, tick)
	}
	return ticks, rows.Err()
}

// Frame loads the node positions recorded for tick, in index order.
func (r *Recorder) Frame(ctx context.Context, runID int64, tick int) ([]mgl64.Vec3, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT x, y, z FROM frames WHERE run_id = ? AND tick = ? ORDER BY node`, runID, tick)
	if err != nil {
		return nil, fmt.Errorf("failed to query frame: %w", err)
	}
	defer rows.Close()

	var positions []mgl64.Vec3
	for rows.Next() {
		var p mgl64.Vec3
		if err := rows.Scan(&p[0], &p[1], &p[2]); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("run %d has no frame at tick %d: %w", runID, tick, sql.ErrNoRows)
	}
	return positions, nil
}

// Observer returns a sim.Observer that records every stride-th tick of runID.
// Frame errors are kept and reported by Err.
func (r *Recorder) Observer(ctx context.Context, runID int64, stride int) *FrameObserver {
	if stride < 1 {
		stride = 1
	}
	return &FrameObserver{rec: r, ctx: ctx, runID: runID, stride: stride}
}

type FrameObserver struct {
	rec    *Recorder
	ctx    context.Context
	runID  int64
	stride int
	err    error
	count  int
}

var _ sim.Observer = (*FrameObserver)(nil)

func (o *FrameObserver) OnTick(f sim.Frame) {
	if o.err != nil || f.Tick%o.stride != 0 {
		return
	}
	if err := o.rec.WriteFrame(o.ctx, o.runID, f.Tick, f.Time, f.Positions); err != nil {
		o.err = err
		return
	}
	o.count++
}

// Recorded returns how many frames were written.
func (o *FrameObserver) Recorded() int { return o.count }

func (o *FrameObserver) Err() error { return o.err }
