// Package dataset is the per-ticker cache layer: a keyed mapping from
// uppercase ticker to its rows, persisted wholesale after every
// mutation under one storage key per domain.
package dataset

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"findoss/internal/models"
	"findoss/internal/storage"
)

// Cache holds one domain's datasets. The whole collection is
// serialized as a single JSON blob; the store is a convenience cache,
// not a system of record.
type Cache[T any] struct {
	mu    sync.Mutex
	store storage.Store
	key   string
}

func New[T any](store storage.Store, storageKey string) *Cache[T] {
	return &Cache[T]{store: store, key: storageKey}
}

// Load returns the persisted collection. A blob that fails to parse
// is deleted and treated as empty: the cache self-heals instead of
// surfacing corruption.
func (c *Cache[T]) Load() []models.CompanyDataset[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

func (c *Cache[T]) loadLocked() []models.CompanyDataset[T] {
	raw, ok, err := c.store.Get(c.key)
	if err != nil {
		slog.Error("dataset: read failed", "key", c.key, "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	var sets []models.CompanyDataset[T]
	if err := json.Unmarshal(raw, &sets); err != nil {
		slog.Warn("dataset: discarding corrupt entry", "key", c.key, "err", err)
		if derr := c.store.Delete(c.key); derr != nil {
			slog.Error("dataset: failed to discard corrupt entry", "key", c.key, "err", derr)
		}
		return nil
	}
	return sets
}

// Upsert replaces the ticker's rows wholesale, or appends a new
// dataset when the ticker is not cached yet. The ticker is
// case-normalized to uppercase before lookup and storage.
func (c *Cache[T]) Upsert(ticker string, rows []T) {
	ticker = canonical(ticker)
	c.mu.Lock()
	defer c.mu.Unlock()

	sets := c.loadLocked()
	replaced := false
	for i := range sets {
		if sets[i].Ticker == ticker {
			sets[i].Rows = rows
			replaced = true
			break
		}
	}
	if !replaced {
		sets = append(sets, models.CompanyDataset[T]{Ticker: ticker, Rows: rows})
	}
	c.persistLocked(sets)
}

// Remove drops the ticker's dataset. When the collection is empty
// after the removal the storage entry is deleted outright, so an
// emptied domain leaves no stale key behind.
func (c *Cache[T]) Remove(ticker string) {
	ticker = canonical(ticker)
	c.mu.Lock()
	defer c.mu.Unlock()

	sets := c.loadLocked()
	kept := make([]models.CompanyDataset[T], 0, len(sets))
	for _, ds := range sets {
		if ds.Ticker != ticker {
			kept = append(kept, ds)
		}
	}
	if len(kept) == 0 {
		if err := c.store.Delete(c.key); err != nil {
			slog.Error("dataset: delete failed", "key", c.key, "err", err)
		}
		return
	}
	c.persistLocked(kept)
}

// Find returns the dataset for the (case-normalized) ticker.
func (c *Cache[T]) Find(ticker string) (models.CompanyDataset[T], bool) {
	ticker = canonical(ticker)
	for _, ds := range c.Load() {
		if ds.Ticker == ticker {
			return ds, true
		}
	}
	return models.CompanyDataset[T]{}, false
}

func (c *Cache[T]) persistLocked(sets []models.CompanyDataset[T]) {
	raw, err := json.Marshal(sets)
	if err == nil {
		err = c.store.Set(c.key, raw)
	}
	if err != nil {
		slog.Error("dataset: persist failed", "key", c.key, "err", err)
	}
}

func canonical(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
