// Package rowcache keeps the last server-confirmed rows per job key. A
// failed refresh never blanks out rows that are already on screen; the
// previous value stays until a fetch succeeds.
package rowcache

import (
	"sync"

	"garagedesk/models"
)

// Cache is a per-job cache of confirmed rows. Refreshing is driven by the
// owning work session, which fetches and then calls Replace only when the
// response is still current; a failed fetch simply never reaches Replace,
// which is how stale rows outlive backend hiccups.
type Cache struct {
	mu   sync.RWMutex
	rows map[string][]models.WorkItemRow
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{rows: make(map[string][]models.WorkItemRow)}
}

// Rows returns a copy of the cached rows for jobKey, or nil when the job has
// never been fetched.
func (c *Cache) Rows(jobKey string) []models.WorkItemRow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows, ok := c.rows[jobKey]
	if !ok {
		return nil
	}
	out := make([]models.WorkItemRow, len(rows))
	copy(out, rows)
	return out
}

// Replace overwrites the cache entry for jobKey.
func (c *Cache) Replace(jobKey string, rows []models.WorkItemRow) {
	cp := make([]models.WorkItemRow, len(rows))
	copy(cp, rows)
	c.mu.Lock()
	c.rows[jobKey] = cp
	c.mu.Unlock()
}

// Append adds confirmed rows to the entry for jobKey. Used by the submit
// flow when the server returns the authoritative rows it persisted.
func (c *Cache) Append(jobKey string, rows []models.WorkItemRow) {
	c.mu.Lock()
	c.rows[jobKey] = append(c.rows[jobKey], rows...)
	c.mu.Unlock()
}

// Remove drops one confirmed row by id. Called only after the backend has
// acknowledged the delete.
func (c *Cache) Remove(jobKey string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.rows[jobKey]
	if !ok {
		return
	}
	out := rows[:0]
	for _, r := range rows {
		if r.ID != id {
			out = append(out, r)
		}
	}
	c.rows[jobKey] = out
}
