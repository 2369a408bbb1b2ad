package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fund-portal/models"
)

const (
	// Dept head workflow labels (exact match with application_status.status_name)
	StatusDeptHeadPendingLabel     = "อยู่ระหว่างการพิจารณาจากหัวหน้าสาขา"
	StatusDeptHeadRecommendedLabel = "เห็นควรพิจารณาจากหัวหน้าสาขา"
	StatusDeptHeadRejectedLabel    = "ไม่เห็นควรพิจารณา"
)

const defaultStatusTTL = 5 * time.Minute

// StatusSource loads the application_status lookup.
type StatusSource interface {
	GetStatuses(ctx context.Context) ([]models.ApplicationStatus, error)
}

// StatusDirectory caches the status lookup for a limited time.
type StatusDirectory struct {
	source StatusSource
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	entry *statusCacheEntry
}

type statusCacheEntry struct {
	statuses  []models.ApplicationStatus
	byID      map[int]models.ApplicationStatus
	byName    map[string]models.ApplicationStatus
	fetchedAt time.Time
}

func NewStatusDirectory(source StatusSource, ttl time.Duration) *StatusDirectory {
	if ttl <= 0 {
		ttl = defaultStatusTTL
	}
	return &StatusDirectory{source: source, ttl: ttl, now: time.Now}
}

func (d *StatusDirectory) fresh(entry *statusCacheEntry) bool {
	return entry != nil && d.now().Sub(entry.fetchedAt) < d.ttl
}

func (d *StatusDirectory) load(ctx context.Context, force bool) (*statusCacheEntry, error) {
	d.mu.RLock()
	cached := d.entry
	d.mu.RUnlock()

	if !force && d.fresh(cached) {
		return cached, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !force && d.fresh(d.entry) {
		return d.entry, nil
	}

	rows, err := d.source.GetStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load application statuses: %w", err)
	}

	entry := &statusCacheEntry{
		statuses:  rows,
		byID:      make(map[int]models.ApplicationStatus, len(rows)),
		byName:    make(map[string]models.ApplicationStatus, len(rows)),
		fetchedAt: d.now(),
	}
	for _, status := range rows {
		entry.byID[status.ApplicationStatusID] = status
		if name := strings.TrimSpace(status.StatusName); name != "" {
			entry.byName[name] = status
		}
	}
	d.entry = entry
	return entry, nil
}

// Clear invalidates the cached statuses.
func (d *StatusDirectory) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entry = nil
}

// Statuses returns all statuses with caching support.
func (d *StatusDirectory) Statuses(ctx context.Context) ([]models.ApplicationStatus, error) {
	entry, err := d.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return entry.statuses, nil
}

// ByID returns the statuses keyed by application_status_id, as the reconciler consumes them.
func (d *StatusDirectory) ByID(ctx context.Context) (map[int]models.ApplicationStatus, error) {
	entry, err := d.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return entry.byID, nil
}

// StatusByName returns the status whose status_name matches exactly.
func (d *StatusDirectory) StatusByName(ctx context.Context, name string) (*models.ApplicationStatus, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, errors.New("status name is required")
	}

	entry, err := d.load(ctx, false)
	if err != nil {
		return nil, err
	}
	if status, ok := entry.byName[trimmed]; ok {
		return &status, nil
	}

	// Force refresh cache once before giving up
	entry, err = d.load(ctx, true)
	if err != nil {
		return nil, err
	}
	if status, ok := entry.byName[trimmed]; ok {
		return &status, nil
	}
	return nil, fmt.Errorf("status '%s' not found", trimmed)
}

// StatusIDByName resolves the application_status_id for the given status_name.
func (d *StatusDirectory) StatusIDByName(ctx context.Context, name string) (int, error) {
	status, err := d.StatusByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return status.ApplicationStatusID, nil
}
