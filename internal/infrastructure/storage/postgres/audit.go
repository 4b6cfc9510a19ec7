package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"restostock/internal/core/id"
	"restostock/internal/domain/audit"
)

// CompressionAlgo specifies how audit changes are stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which changes are compressed.
const DefaultCompressThreshold = 10 * 1024

// AuditRepo implements audit.Recorder on sys_audit.
// Approval snapshots carry every count line, so large payloads are zstd compressed.
type AuditRepo struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Recorder = (*AuditRepo)(nil)

// NewAuditRepo creates an audit repository. A threshold <= 0 uses DefaultCompressThreshold.
func NewAuditRepo(txManager *TxManager, compressThreshold int) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	if compressThreshold <= 0 {
		compressThreshold = DefaultCompressThreshold
	}
	return &AuditRepo{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: compressThreshold,
	}, nil
}

// encode returns the column values for changes.
func (r *AuditRepo) encode(changes json.RawMessage) (json.RawMessage, []byte, CompressionAlgo) {
	if len(changes) <= r.compressThreshold {
		return changes, nil, CompressionNone
	}
	return nil, r.encoder.EncodeAll(changes, nil), CompressionZstd
}

func (r *AuditRepo) decode(changes json.RawMessage, compressed []byte, algo CompressionAlgo) (json.RawMessage, error) {
	if algo != CompressionZstd || len(compressed) == 0 {
		return changes, nil
	}
	out, err := r.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress changes: %w", err)
	}
	return out, nil
}

// Record inserts the entry within the context transaction, if any.
func (r *AuditRepo) Record(ctx context.Context, entry audit.Entry) error {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	changes, compressed, algo := r.encode(entry.Changes)

	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, user_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action, entry.UserID,
		changes, compressed, algo, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns the entries of an entity, newest first.
func (r *AuditRepo) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, entity_type, entity_id, action, user_id,
			   changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var (
			e          audit.Entry
			changes    []byte
			compressed []byte
			algo       CompressionAlgo
		)
		if err := rows.Scan(
			&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.UserID,
			&changes, &compressed, &algo, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Changes, err = r.decode(changes, compressed, algo); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
