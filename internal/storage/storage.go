// Package storage provides an optional persistent log of served
// predictions using BoltDB. The log feeds offline analysis and retraining
// data collection; it sits entirely off the inference response path and
// is only enabled when a data path is configured.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"roleserve/internal/features"
	"roleserve/internal/serve"
)

const predictionsBucket = "predictions"

// PredictionRecord is one served prediction as persisted.
type PredictionRecord struct {
	Ts              time.Time `json:"ts"`
	Skills          string    `json:"skills"`
	Qualification   string    `json:"qualification"`
	ExperienceLevel string    `json:"experience_level"`
	PredictedRole   string    `json:"predicted_role"`
	Confidence      float64   `json:"confidence"`
	Status          string    `json:"status"`
}

// Store is a BoltDB-backed prediction log. It implements serve.Recorder.
type Store struct {
	db  *bbolt.DB
	seq atomic.Uint64
}

// New opens the prediction log under dataPath and ensures the bucket
// exists. Returns an error if the database cannot be opened.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "roleserve-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket)); err != nil {
			return fmt.Errorf("create predictions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordPrediction persists one served prediction. Keys are timestamp
// ordered with a process-local sequence suffix so same-nanosecond writes
// never collide.
func (s *Store) RecordPrediction(p features.CandidateProfile, r serve.Result) error {
	record := PredictionRecord{
		Ts:              time.Now(),
		Skills:          p.Skills,
		Qualification:   p.Qualification,
		ExperienceLevel: p.ExperienceLevel,
		PredictedRole:   r.PredictedRole,
		Confidence:      r.Confidence,
		Status:          r.Status,
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal prediction record: %w", err)
		}

		key := fmt.Sprintf("%020d_%d", record.Ts.UnixNano(), s.seq.Add(1))
		return b.Put([]byte(key), data)
	})
}

// GetPredictions retrieves logged predictions within a time range,
// oldest first. The range is inclusive of both bounds.
func (s *Store) GetPredictions(start, end time.Time) ([]PredictionRecord, error) {
	var records []PredictionRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))
		c := b.Cursor()

		startKey := []byte(fmt.Sprintf("%020d", start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%020d_~", end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && string(k) <= string(endKey); k, v = c.Next() {
			var record PredictionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue // Skip malformed records
			}
			records = append(records, record)
		}

		return nil
	})

	return records, err
}
