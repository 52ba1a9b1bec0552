package registry

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"appraisal/internal/domain/assessment"
)

var (
	ErrNotFound = errors.New("assessment not found in registry")
	// ErrStaleRecord is returned by remote stores when an upsert carries a
	// version below the stored one. The in-memory registry reloads rather
	// than silently overwriting the newer write.
	ErrStaleRecord = errors.New("remote store holds a newer version of the record")
)

// RemoteStore is the hosted table the registry syncs against. Upserts are
// keyed by id and guarded by the per-record version counter.
type RemoteStore interface {
	FetchAll(ctx context.Context) ([]assessment.Assessment, error)
	UpsertAll(ctx context.Context, records []assessment.Assessment) error
	Delete(ctx context.Context, id string) error
}

// LocalCache mirrors the whole registry snapshot under a fixed storage key.
// It exists solely to survive a restart while the remote store is down, so
// write failures are logged and swallowed.
type LocalCache interface {
	Read(ctx context.Context) ([]assessment.Assessment, error)
	Write(ctx context.Context, records []assessment.Assessment) error
}

// Registry holds the full assessment set for the deployment and mediates all
// reads and writes between the handlers, the local cache and the remote
// store. Every mutation rewrites the entire snapshot; there is no
// incremental diffing.
type Registry struct {
	mu      sync.RWMutex
	records []assessment.Assessment
	cache   LocalCache
	remote  RemoteStore
}

// New builds a registry. Either store may be nil: with no remote the system
// runs purely off the local cache, with no cache the snapshot lives only in
// memory and the remote store.
func New(cache LocalCache, remote RemoteStore) *Registry {
	return &Registry{cache: cache, remote: remote}
}

// Load populates the registry at startup: the remote store wins when it has
// records, otherwise the local cache, otherwise the registry starts empty.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.remote != nil {
		records, err := r.remote.FetchAll(ctx)
		if err != nil {
			slog.Warn("remote fetch failed, falling back to local cache", "err", err)
		} else if len(records) > 0 {
			r.records = records
			return nil
		}
	}

	if r.cache != nil {
		records, err := r.cache.Read(ctx)
		if err != nil {
			slog.Warn("local cache read failed", "err", err)
		} else if len(records) > 0 {
			r.records = records
			return nil
		}
	}

	r.records = nil
	return nil
}

// All returns a deep copy of every record.
func (r *Registry) All() []assessment.Assessment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.records)
}

// Get returns one record by id.
func (r *Registry) Get(id string) (assessment.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec.Clone(), nil
		}
	}
	return assessment.Assessment{}, ErrNotFound
}

// GetByEmployeeEmail returns the record whose employee email matches
// case-insensitively. Duplicate emails are undefined behavior; the first
// match wins.
func (r *Registry) GetByEmployeeEmail(email string) (assessment.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if assessment.SameEmail(rec.EmployeeDetails.Email, email) {
			return rec.Clone(), nil
		}
	}
	return assessment.Assessment{}, ErrNotFound
}

// GetByManagerEmail returns every record assigned to the given manager,
// matched case-insensitively. Used to scope a manager's visible queue.
func (r *Registry) GetByManagerEmail(email string) []assessment.Assessment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []assessment.Assessment
	for _, rec := range r.records {
		if assessment.SameEmail(rec.ManagerEmail, email) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Replace swaps one record by id and persists the whole snapshot. Unknown
// ids are a no-op; the version counter is bumped on the replaced record.
func (r *Registry) Replace(ctx context.Context, record assessment.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if rec.ID == record.ID {
			record.Version = rec.Version + 1
			r.records[i] = record.Clone()
			return r.persistLocked(ctx)
		}
	}
	return nil
}

// Append adds a new record and persists the whole snapshot.
func (r *Registry) Append(ctx context.Context, record assessment.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.Version = 1
	r.records = append(r.records, record.Clone())
	return r.persistLocked(ctx)
}

// Remove deletes one record by id, locally and in the remote store. Not
// reversible.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	found := false
	for _, rec := range r.records {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return ErrNotFound
	}
	r.records = kept

	r.writeCacheLocked(ctx)
	if r.remote != nil {
		if err := r.remote.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ImportRoster merges parsed roster rows into the registry per the bulk
// import rules: unknown emails are created via the blank-assessment factory,
// known emails get only their KPI text and manager assignment overwritten.
// The whole registry is persisted once as a batch. Returns the counts of
// created and updated records.
func (r *Registry) ImportRoster(ctx context.Context, rows []assessment.RosterRow) (created, updated int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		merged := false
		for i := range r.records {
			if assessment.SameEmail(r.records[i].EmployeeDetails.Email, row.Email) {
				assessment.MergeRoster(&r.records[i], row)
				r.records[i].Version++
				updated++
				merged = true
				break
			}
		}
		if merged {
			continue
		}
		rec := assessment.NewBlank(row.FullName, row.Email, row.ManagerName, row.ManagerEmail, row.KPISeeds, row.ManagerPassword)
		rec.Version = 1
		r.records = append(r.records, rec)
		created++
	}

	return created, updated, r.persistLocked(ctx)
}

// RestoreBackup replaces the registry wholesale from a JSON backup and
// resyncs it. A restore is a deliberate overwrite, not a race: restored
// versions are lifted above whatever the remote store holds per record, so
// an older backup still wins over state written since it was taken.
func (r *Registry) RestoreBackup(ctx context.Context, records []assessment.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	floor := make(map[string]int64)
	if r.remote != nil {
		stored, err := r.remote.FetchAll(ctx)
		if err != nil {
			slog.Warn("remote fetch before restore failed", "err", err)
		}
		for _, rec := range stored {
			floor[rec.ID] = rec.Version
		}
	}

	r.records = cloneAll(records)
	for i := range r.records {
		v := r.records[i].Version
		if f := floor[r.records[i].ID]; f > v {
			v = f
		}
		r.records[i].Version = v + 1
	}
	return r.persistLocked(ctx)
}

// ForceSync re-upserts the current snapshot to the remote store. Used as the
// explicit user-triggered retry after a sync failure.
func (r *Registry) ForceSync(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		r.records[i].Version++
	}
	return r.persistLocked(ctx)
}

// Len reports the number of records held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// persistLocked rewrites the local cache (best effort) and upserts the whole
// snapshot to the remote store. A stale-version rejection reloads the remote
// state so the next read reflects the winning write.
func (r *Registry) persistLocked(ctx context.Context) error {
	r.writeCacheLocked(ctx)

	if r.remote == nil {
		return nil
	}
	if err := r.remote.UpsertAll(ctx, cloneAll(r.records)); err != nil {
		if errors.Is(err, ErrStaleRecord) {
			if records, fetchErr := r.remote.FetchAll(ctx); fetchErr == nil && len(records) > 0 {
				r.records = records
			}
		}
		return err
	}
	return nil
}

func (r *Registry) writeCacheLocked(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Write(ctx, cloneAll(r.records)); err != nil {
		slog.Warn("local cache write failed", "err", err)
	}
}

func cloneAll(records []assessment.Assessment) []assessment.Assessment {
	if records == nil {
		return nil
	}
	out := make([]assessment.Assessment, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}
