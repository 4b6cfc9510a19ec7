// Package audit defines the audit trail of stock-changing decisions:
// count approvals, rejections and consistency corrections.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appctx "restostock/internal/core/context"
	"restostock/internal/core/id"
)

// Action names an audited operation.
type Action string

const (
	ActionCountApproved  Action = "count.approved"
	ActionCountRejected  Action = "count.rejected"
	ActionConsistencyFix Action = "stock.consistency_fix"
)

// Entry is a single audit record. Changes holds a JSON snapshot.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Action     Action          `db:"action" json:"action"`
	UserID     string          `db:"user_id" json:"userId,omitempty"`
	Changes    json.RawMessage `db:"changes" json:"changes"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Recorder persists audit entries. Record joins the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// NewEntry builds an entry from a payload, taking the user from ctx.
func NewEntry(ctx context.Context, entityType string, entityID id.ID, action Action, payload any) (Entry, error) {
	changes, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal audit payload: %w", err)
	}
	return Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     appctx.GetUserID(ctx),
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Write builds and records an entry in one step.
func Write(ctx context.Context, r Recorder, entityType string, entityID id.ID, action Action, payload any) error {
	if r == nil {
		return nil
	}
	entry, err := NewEntry(ctx, entityType, entityID, action, payload)
	if err != nil {
		return err
	}
	if err := r.Record(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}
