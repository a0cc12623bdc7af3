package failures

import (
	"encoding/json"
	"fmt"
	"time"

	"pixbatch/store"
)

// FailureRecord is one error met while processing a source file during a pass.
type FailureRecord struct {
	RunID     string    `json:"run_id"`
	Pass      string    `json:"pass"`
	File      string    `json:"file"`
	Height    int       `json:"height,omitempty"` // 0 when the whole file failed
	Kind      string    `json:"kind"`             // decode, encode, io
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

const keyPrefix = "failure/"

// Store keeps failure records in the shared run history DB.
type Store struct {
	db *store.DB
}

func New(db *store.DB) *Store {
	return &Store{db: db}
}

func recordKey(r FailureRecord) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/%s/%d", keyPrefix, r.RunID, r.Pass, r.File, r.Height))
}

func runPrefix(runID string) []byte {
	return []byte(keyPrefix + runID + "/")
}

// StoreFailure stores a processing failure
func (s *Store) StoreFailure(r FailureRecord) error {
	if r.RunID == "" {
		return fmt.Errorf("cannot store failure for %s: missing run id", r.File)
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal failure record: %w", err)
	}
	return s.db.Put(recordKey(r), data)
}

// ListFailures returns the failures of one run, ordered by pass then file.
func (s *Store) ListFailures(runID string) ([]FailureRecord, error) {
	var out []FailureRecord
	err := s.db.Scan(runPrefix(runID), func(_, value []byte) error {
		var r FailureRecord
		if err := json.Unmarshal(value, &r); err != nil {
			return nil // Skip invalid records
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list failures for run %s: %w", runID, err)
	}
	return out, nil
}

// DeleteRun removes every failure recorded for runID.
func (s *Store) DeleteRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("missing run id")
	}
	return s.db.DeletePrefix(runPrefix(runID))
}
