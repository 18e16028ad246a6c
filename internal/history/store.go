package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	project TEXT NOT NULL,
	network TEXT NOT NULL,
	chain_id INTEGER NOT NULL DEFAULT 0,
	script TEXT NOT NULL DEFAULT '',
	command TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS deployments (
	run_id TEXT NOT NULL,
	contract TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	tx_hash TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (run_id) REFERENCES runs(id)
);
`

const indexes = `
CREATE INDEX IF NOT EXISTS idx_runs_project_started ON runs(project, started_at);
CREATE INDEX IF NOT EXISTS idx_deployments_run ON deployments(run_id);
`

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Run is one recorded toolchain invocation that touched a network.
type Run struct {
	ID         string
	Project    string
	Network    string
	ChainID    uint64
	Script     string
	Command    string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Deployment is one contract created during a run.
type Deployment struct {
	RunID    string
	Contract string
	Address  string
	TxHash   string
}

// Store is the sqlite-backed deployment ledger.
type Store struct {
	db *sql.DB
}

// Open opens the ledger at path, creating parent dirs and schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("history mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("history open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history schema: %w", err)
	}
	if _, err := db.Exec(indexes); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history indexes: %w", err)
	}
	// Migrations for existing databases; errors are ignored because some
	// may already be applied.
	_ = runMigrations(db)
	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	_, _ = db.Exec("ALTER TABLE runs ADD COLUMN command TEXT NOT NULL DEFAULT ''")
	_, _ = db.Exec("ALTER TABLE deployments ADD COLUMN contract TEXT NOT NULL DEFAULT ''")
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run and its deployments in one transaction.
func (s *Store) RecordRun(run *Run, deployments []Deployment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO runs (id, project, network, chain_id, script, command, status, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Project, run.Network, run.ChainID, run.Script, run.Command,
		run.Status, run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("history insert run: %w", err)
	}

	for _, d := range deployments {
		_, err = tx.Exec(
			`INSERT INTO deployments (run_id, contract, address, tx_hash) VALUES (?, ?, ?, ?)`,
			run.ID, d.Contract, d.Address, d.TxHash,
		)
		if err != nil {
			return fmt.Errorf("history insert deployment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history commit: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of 0
// means no limit.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	q := `SELECT id, project, network, chain_id, script, command, status, started_at, finished_at
	      FROM runs ORDER BY started_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(q+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(q)
	}
	if err != nil {
		return nil, fmt.Errorf("history list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun returns a run and its deployments by id, or a prefix of the id
// when the prefix is unambiguous. A prefix matching more than one run
// is an error.
func (s *Store) GetRun(id string) (*Run, []Deployment, error) {
	r, err := s.findRun(id)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.Query(
		`SELECT run_id, contract, address, tx_hash FROM deployments WHERE run_id = ?`, r.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("history list deployments: %w", err)
	}
	defer rows.Close()

	var deployments []Deployment
	for rows.Next() {
		var d Deployment
		if err := rows.Scan(&d.RunID, &d.Contract, &d.Address, &d.TxHash); err != nil {
			return nil, nil, fmt.Errorf("history scan deployment: %w", err)
		}
		deployments = append(deployments, d)
	}
	return r, deployments, rows.Err()
}

// findRun resolves an exact run id, falling back to prefix matching.
func (s *Store) findRun(id string) (*Run, error) {
	const selectRun = `SELECT id, project, network, chain_id, script, command, status, started_at, finished_at FROM runs`

	r, err := scanRun(s.db.QueryRow(selectRun+" WHERE id = ?", id))
	if err == nil {
		return r, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := s.db.Query(selectRun+" WHERE id LIKE ? LIMIT 2", id+"%")
	if err != nil {
		return nil, fmt.Errorf("history find run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %q not found", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous; use more characters", id)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var started, finished string
	err := row.Scan(&r.ID, &r.Project, &r.Network, &r.ChainID, &r.Script,
		&r.Command, &r.Status, &started, &finished)
	if err != nil {
		return nil, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339, started)
	r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return &r, nil
}
