// ABOUTME: Tracks fire-and-forget remote writes as pending, synced or failed.
// ABOUTME: Failures are journaled to the local cache so a later run can push them again.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	stdsync "sync"
	"time"

	"github.com/harperreed/habito/internal/cache"
	"github.com/harperreed/habito/internal/models"
	"github.com/harperreed/habito/internal/storage"
	"go.uber.org/zap"
)

// Op is the kind of remote write.
type Op string

const (
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Status is the sync state of one record.
type Status string

const (
	StatusPending Status = "pending"
	StatusSynced  Status = "synced"
	StatusFailed  Status = "failed"
)

// Record is the last known write state of one activity.
type Record struct {
	ID        string           `json:"id"`
	Op        Op               `json:"op"`
	Status    Status           `json:"status"`
	Error     string           `json:"error,omitempty"`
	Attempts  int              `json:"attempts"`
	UpdatedAt time.Time        `json:"updated_at"`
	Snapshot  *models.Activity `json:"snapshot,omitempty"`
}

// Journal persists failed records across runs. *cache.Cache satisfies it.
type Journal interface {
	SaveJSON(key string, v any) error
	ScanPrefix(prefix string) (map[string][]byte, error)
	Delete(key []byte) error
}

// WriteFunc performs one remote write.
type WriteFunc func(ctx context.Context) error

// Tracker owns the sync state of every write dispatched in this process.
type Tracker struct {
	mu      stdsync.Mutex
	records map[string]*Record
	journal Journal
	logger  *zap.Logger
	wg      stdsync.WaitGroup
	now     func() time.Time
	// tails holds, per id, the completion signal of the last queued write.
	tails map[string]chan struct{}
}

// NewTracker builds a tracker. journal may be nil to keep state in memory only.
func NewTracker(journal Journal, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		records: make(map[string]*Record),
		tails:   make(map[string]chan struct{}),
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}
}

// Dispatch marks id pending and runs write in the background. Writes for the
// same id reach the store in dispatch order. The write outlives ctx's
// cancellation; call Wait before exiting.
func (t *Tracker) Dispatch(ctx context.Context, id string, op Op, snapshot *models.Activity, write WriteFunc) {
	t.enqueue(ctx, id, op, snapshot, write)
}

// enqueue chains write behind the previous write for id and returns its
// result once it has run.
func (t *Tracker) enqueue(ctx context.Context, id string, op Op, snapshot *models.Activity, write WriteFunc) <-chan error {
	t.mu.Lock()
	rec := t.beginLocked(id, op, snapshot)
	prev := t.tails[id]
	done := make(chan struct{})
	t.tails[id] = done
	t.mu.Unlock()

	result := make(chan error, 1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if prev != nil {
			<-prev
		}
		err := write(context.WithoutCancel(ctx))
		t.finish(rec, err)

		t.mu.Lock()
		if t.tails[id] == done {
			delete(t.tails, id)
		}
		t.mu.Unlock()
		close(done)
		result <- err
	}()
	return result
}

// Wait blocks until every dispatched write has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) beginLocked(id string, op Op, snapshot *models.Activity) Record {
	rec, ok := t.records[id]
	if !ok {
		rec = &Record{ID: id}
		t.records[id] = rec
	}
	rec.Op = op
	rec.Status = StatusPending
	rec.Error = ""
	rec.Attempts++
	rec.UpdatedAt = t.now()
	if snapshot != nil {
		snap := snapshot.Clone()
		rec.Snapshot = &snap
	} else {
		rec.Snapshot = nil
	}
	return *rec
}

func (t *Tracker) finish(started Record, err error) {
	outcome := StatusSynced
	if err != nil {
		outcome = StatusFailed
	}
	writesCounter.WithLabelValues(string(started.Op), string(outcome)).Inc()

	t.mu.Lock()
	rec := t.records[started.ID]
	// A newer dispatch for the same id supersedes this result.
	superseded := rec == nil || rec.Attempts != started.Attempts
	if !superseded {
		rec.Status = outcome
		rec.UpdatedAt = t.now()
		if err != nil {
			rec.Error = err.Error()
		}
		started = *rec
	}
	t.mu.Unlock()

	if superseded {
		return
	}
	if err != nil {
		t.logger.Warn("remote write failed",
			zap.String("id", started.ID),
			zap.String("op", string(started.Op)),
			zap.Int("attempts", started.Attempts),
			zap.Error(err))
		t.journalSave(started)
		return
	}
	t.logger.Debug("remote write synced", zap.String("id", started.ID), zap.String("op", string(started.Op)))
	t.journalDrop(started.ID)
}

func (t *Tracker) journalSave(rec Record) {
	if t.journal == nil {
		return
	}
	if err := t.journal.SaveJSON(cache.JournalPrefix+rec.ID, rec); err != nil {
		t.logger.Warn("journal failed write", zap.String("id", rec.ID), zap.Error(err))
	}
}

func (t *Tracker) journalDrop(id string) {
	if t.journal == nil {
		return
	}
	if err := t.journal.Delete([]byte(cache.JournalPrefix + id)); err != nil {
		t.logger.Warn("clear journal entry", zap.String("id", id), zap.Error(err))
	}
}

// Status returns the in-process state of id.
func (t *Tracker) Status(id string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Pending counts writes still in flight.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, rec := range t.records {
		if rec.Status == StatusPending {
			n++
		}
	}
	return n
}

// Records returns the in-process records followed by journaled failures from
// earlier runs, most recent first.
func (t *Tracker) Records() ([]Record, error) {
	t.mu.Lock()
	seen := make(map[string]bool, len(t.records))
	out := make([]Record, 0, len(t.records))
	for id, rec := range t.records {
		seen[id] = true
		out = append(out, *rec)
	}
	t.mu.Unlock()

	journaled, err := t.Journaled()
	if err != nil {
		return nil, err
	}
	for _, rec := range journaled {
		if !seen[rec.ID] {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Journaled returns the failed records persisted in the journal.
func (t *Tracker) Journaled() ([]Record, error) {
	if t.journal == nil {
		return nil, nil
	}
	raw, err := t.journal.ScanPrefix(cache.JournalPrefix)
	if err != nil {
		return nil, fmt.Errorf("read sync journal: %w", err)
	}
	out := make([]Record, 0, len(raw))
	for key, data := range raw {
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			t.logger.Warn("skip corrupt journal entry", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

// PushSummary counts the outcome of a Push.
type PushSummary struct {
	Synced int
	Failed int
}

// Push re-sends every journaled failure to repo synchronously. A delete of an
// already missing record counts as synced.
func (t *Tracker) Push(ctx context.Context, repo storage.Repository) (PushSummary, error) {
	var summary PushSummary
	records, err := t.Journaled()
	if err != nil {
		return summary, err
	}

	for _, rec := range records {
		var write WriteFunc
		switch rec.Op {
		case OpUpdate:
			if rec.Snapshot == nil {
				t.journalDrop(rec.ID)
				continue
			}
			patch := models.FullPatch(*rec.Snapshot)
			id := rec.ID
			write = func(ctx context.Context) error { return repo.UpdateActivity(ctx, id, patch) }
		case OpDelete:
			id := rec.ID
			write = func(ctx context.Context) error {
				if err := repo.DeleteActivity(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
					return err
				}
				return nil
			}
		default:
			t.journalDrop(rec.ID)
			continue
		}

		t.mu.Lock()
		if _, ok := t.records[rec.ID]; !ok {
			r := rec
			t.records[rec.ID] = &r
		}
		t.mu.Unlock()

		if err := <-t.enqueue(ctx, rec.ID, rec.Op, rec.Snapshot, write); err != nil {
			summary.Failed++
		} else {
			summary.Synced++
		}
	}
	return summary, nil
}
