package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
)

// AuditRepository provides an in-memory implementation of
// repository.AuditRepository. Records do not survive a restart; use one of
// the SQL-backed repositories for a durable audit trail.
type AuditRepository struct {
	mu      sync.RWMutex
	records []*entity.AuditRecord
}

// NewAuditRepository creates a new in-memory audit repository.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Save persists a new audit record.
func (r *AuditRepository) Save(ctx context.Context, rec *entity.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external mutations
	recCopy := *rec
	r.records = append(r.records, &recCopy)
	return nil
}

// FindRecent returns the most recent records, newest first.
func (r *AuditRepository) FindRecent(ctx context.Context, limit int) ([]*entity.AuditRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.AuditRecord, 0, len(r.records))
	for _, rec := range r.records {
		recCopy := *rec
		out = append(out, &recCopy)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
