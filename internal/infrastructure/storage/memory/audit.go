package memory

import (
	"context"

	"restostock/internal/core/id"
	"restostock/internal/domain/audit"
)

// AuditRepo implements audit.Recorder.
type AuditRepo struct{ s *Store }

var _ audit.Recorder = (*AuditRepo)(nil)

func (r *AuditRepo) Record(ctx context.Context, entry audit.Entry) error {
	return r.s.with(ctx, func(st *state) error {
		st.audit = append(st.audit, entry)
		return nil
	})
}

// History returns entries of one entity, newest first.
func (r *AuditRepo) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	out := make([]audit.Entry, 0)
	err := r.s.with(ctx, func(st *state) error {
		for i := len(st.audit) - 1; i >= 0; i-- {
			e := st.audit[i]
			if e.EntityType != entityType || e.EntityID != entityID {
				continue
			}
			out = append(out, e)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}
