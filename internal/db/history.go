package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/qiangli/dataworks/internal/api"
)

// https://github.com/etcd-io/bbolt?tab=readme-ov-file

const runsBucket = "runs"

// History is an append-only log of dispatched runs.
//
// The bolt file is locked only for the duration of a single Append or Recent
// so a server and one-off CLI runs can share the same file.
type History struct {
	path string

	// bolt takes an exclusive flock per open, which also blocks other opens
	// within this process.
	mu sync.Mutex
}

func OpenHistory(pathname string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(pathname), 0755); err != nil {
		return nil, err
	}
	h := &History{path: pathname}
	err := h.update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Close is kept for callers that defer it; nothing stays open between calls.
func (r *History) Close() error {
	return nil
}

func (r *History) open(readOnly bool) (*bolt.DB, error) {
	return bolt.Open(r.path, 0600, &bolt.Options{Timeout: 5 * time.Second, ReadOnly: readOnly})
}

func (r *History) update(fn func(*bolt.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.open(false)
	if err != nil {
		return fmt.Errorf("open history %s: %w", r.path, err)
	}
	defer db.Close()
	return db.Update(fn)
}

func (r *History) view(fn func(*bolt.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	db, err := r.open(true)
	if err != nil {
		return fmt.Errorf("open history %s: %w", r.path, err)
	}
	defer db.Close()
	return db.View(fn)
}

// keys sort by start time, the id breaks ties
func runKey(run *api.Run) []byte {
	return []byte(fmt.Sprintf("%020d-%s", run.Started.UnixNano(), run.ID))
}

func (r *History) Append(run *api.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return r.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		if err != nil {
			return err
		}
		return b.Put(runKey(run), data)
	})
}

// Recent returns up to limit runs, newest first.
func (r *History) Recent(limit int) ([]*api.Run, error) {
	runs := make([]*api.Run, 0)
	err := r.view(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil && (limit <= 0 || len(runs) < limit); k, v = c.Prev() {
			var run api.Run
			if err := json.Unmarshal(v, &run); err != nil {
				return err
			}
			runs = append(runs, &run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}
