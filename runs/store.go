package runs

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"pixbatch/store"
)

// RunRecord summarises one completed run.
type RunRecord struct {
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	SourceDir    string    `json:"source_dir"`
	Files        int       `json:"files"`
	Workers      int       `json:"workers"`
	Resolutions  []int     `json:"resolutions"`
	SequentialMs int64     `json:"sequential_ms"`
	ParallelMs   int64     `json:"parallel_ms"`
	Improved     bool      `json:"improved"`
	FailedFiles  int       `json:"failed_files"`
	ReportPath   string    `json:"report_path"`
}

const keyPrefix = "run/"

// Store keeps run records in the shared run history DB.
type Store struct {
	db *store.DB
}

func New(db *store.DB) *Store {
	return &Store{db: db}
}

func recordKey(runID string) []byte {
	return []byte(keyPrefix + runID)
}

// StoreRun stores a run record, replacing any record with the same run id.
func (s *Store) StoreRun(r RunRecord) error {
	if r.RunID == "" {
		return errors.New("cannot store run: missing run id")
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	return s.db.Put(recordKey(r.RunID), data)
}

// GetRun retrieves a run record by id. A missing run returns (nil, nil).
func (s *Store) GetRun(runID string) (*RunRecord, error) {
	data, err := s.db.Get(recordKey(runID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var r RunRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	return &r, nil
}

// ListRuns returns every run, newest first.
func (s *Store) ListRuns() ([]RunRecord, error) {
	var out []RunRecord
	err := s.db.Scan([]byte(keyPrefix), func(_, value []byte) error {
		var r RunRecord
		if err := json.Unmarshal(value, &r); err != nil {
			return nil // Skip invalid records
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// CleanupOldRecords removes run records older than maxAge and returns their ids so
// callers can drop data keyed by them.
func (s *Store) CleanupOldRecords(maxAge time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-maxAge)

	var expired []string
	err := s.db.Scan([]byte(keyPrefix), func(_, value []byte) error {
		var r RunRecord
		if err := json.Unmarshal(value, &r); err != nil {
			return nil
		}
		if r.Timestamp.Before(cutoff) {
			expired = append(expired, r.RunID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan runs: %w", err)
	}

	for _, id := range expired {
		if err := s.db.Delete(recordKey(id)); err != nil {
			return nil, fmt.Errorf("failed to delete old run record %s: %w", id, err)
		}
	}
	return expired, nil
}
