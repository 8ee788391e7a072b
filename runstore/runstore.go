// Package runstore persists training runs in SQLite so repeated experiments
// stay comparable: one row per run with its configuration and final scores,
// plus the per-epoch history.
package runstore

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bits-and-bytess/ExoplanetDetect/core/model"
	"github.com/bits-and-bytess/ExoplanetDetect/pipeline"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	model_name     TEXT NOT NULL,
	config_json    TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	train_accuracy REAL NOT NULL,
	test_accuracy  REAL NOT NULL,
	final_loss     REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS run_history (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	epoch        INTEGER NOT NULL,
	loss         REAL NOT NULL,
	accuracy     REAL NOT NULL,
	val_loss     REAL NOT NULL,
	val_accuracy REAL NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// Store is the SQLite-backed run registry.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the registry database and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "runstore.Open")
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, errors.Wrap(err, "runstore.Open: pragma")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, errors.Wrap(err, "runstore.Open: pragma fk")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "runstore.Open: migrate")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one recorded experiment.
type Run struct {
	ID            string
	ModelName     string
	Config        pipeline.Config
	CreatedAt     time.Time
	TrainAccuracy float64
	TestAccuracy  float64
	FinalLoss     float64
}

// RecordRun stores a finished run and returns its id.
func (s *Store) RecordRun(modelName string, cfg pipeline.Config, history *model.History, trainAccuracy, testAccuracy float64) (string, error) {
	if history == nil || history.Epochs() == 0 {
		return "", errors.Wrap(errors.ErrEmptyData, "runstore.RecordRun")
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "runstore.RecordRun: marshal config")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", errors.Wrap(err, "runstore.RecordRun: begin tx")
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, model_name, config_json, created_at, train_accuracy, test_accuracy, final_loss)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, modelName, string(cfgJSON), now.Format(time.RFC3339Nano),
		trainAccuracy, testAccuracy, history.Loss[history.Epochs()-1],
	)
	if err != nil {
		return "", errors.Wrap(err, "runstore.RecordRun: insert run")
	}

	for epoch := 0; epoch < history.Epochs(); epoch++ {
		_, err = tx.Exec(
			`INSERT INTO run_history (run_id, epoch, loss, accuracy, val_loss, val_accuracy)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, epoch+1,
			history.Loss[epoch], history.Accuracy[epoch],
			history.ValLoss[epoch], history.ValAccuracy[epoch],
		)
		if err != nil {
			return "", errors.Wrap(err, "runstore.RecordRun: insert history")
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "runstore.RecordRun: commit")
	}
	return id, nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, model_name, config_json, created_at, train_accuracy, test_accuracy, final_loss
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "runstore.ListRuns")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, errors.Wrap(rows.Err(), "runstore.ListRuns")
}

// BestRun returns the run with the highest test accuracy.
func (s *Store) BestRun() (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, model_name, config_json, created_at, train_accuracy, test_accuracy, final_loss
		 FROM runs ORDER BY test_accuracy DESC, created_at DESC LIMIT 1`)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, errors.Wrap(errors.ErrEmptyData, "runstore.BestRun")
		}
		return Run{}, err
	}
	return run, nil
}

// History reloads the per-epoch curves for a run.
func (s *Store) History(runID string) (*model.History, error) {
	rows, err := s.db.Query(
		`SELECT loss, accuracy, val_loss, val_accuracy
		 FROM run_history WHERE run_id = ? ORDER BY epoch`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "runstore.History")
	}
	defer rows.Close()

	h := &model.History{}
	for rows.Next() {
		var loss, acc, valLoss, valAcc float64
		if err := rows.Scan(&loss, &acc, &valLoss, &valAcc); err != nil {
			return nil, errors.Wrap(err, "runstore.History: scan")
		}
		h.Loss = append(h.Loss, loss)
		h.Accuracy = append(h.Accuracy, acc)
		h.ValLoss = append(h.ValLoss, valLoss)
		h.ValAccuracy = append(h.ValAccuracy, valAcc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "runstore.History")
	}
	if h.Epochs() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "runstore.History")
	}
	return h, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var cfgJSON, createdAt string
	err := row.Scan(&run.ID, &run.ModelName, &cfgJSON, &createdAt,
		&run.TrainAccuracy, &run.TestAccuracy, &run.FinalLoss)
	if err != nil {
		return Run{}, errors.Wrap(err, "runstore: scan run")
	}
	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return Run{}, errors.Wrap(err, "runstore: decode config")
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, errors.Wrap(err, "runstore: parse created_at")
	}
	return run, nil
}
