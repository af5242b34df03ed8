// Package bolt persists run reports in a local BoltDB file for CLI mode,
// where no Postgres instance is available.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mailsig/sigsync/domain"
)

var bucketName = []byte("run_reports")

// HistoryStore wraps BoltDB to persist run reports locally.
type HistoryStore struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures the reports bucket exists.
func Open(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &HistoryStore{db: db}, nil
}

// Save stores a run report under a chronologically ordered key.
func (s *HistoryStore) Save(ctx context.Context, report *domain.RunReport) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if report == nil || report.ID == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}

	key := []byte(buildKey(report))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, payload)
	})
}

// List returns up to limit reports, most recent first.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 20
	}

	var reports []domain.RunReport
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Last(); k != nil && len(reports) < limit; k, v = c.Prev() {
			var report domain.RunReport
			if err := json.Unmarshal(v, &report); err != nil {
				continue
			}
			reports = append(reports, report)
		}
		return nil
	})
	return reports, err
}

// GetByID scans for a report with the given run ID.
func (s *HistoryStore) GetByID(ctx context.Context, id string) (*domain.RunReport, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	var found *domain.RunReport
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var report domain.RunReport
			if err := json.Unmarshal(v, &report); err != nil {
				continue
			}
			if report.ID == id {
				found = &report
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrRunNotFound
	}
	return found, nil
}

// Size returns the number of stored reports.
func (s *HistoryStore) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes reports older than the provided timestamp.
func (s *HistoryStore) Cleanup(olderThan time.Time) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var report domain.RunReport
			if err := json.Unmarshal(v, &report); err != nil {
				continue
			}
			if report.StartedAt.Before(olderThan) {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *HistoryStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildKey(report *domain.RunReport) string {
	return fmt.Sprintf("%020d_%s", report.StartedAt.UnixNano(), report.ID)
}
