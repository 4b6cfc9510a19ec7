// Package numerator provides the PostgreSQL implementation of document auto-numbering.
// It implements core/numerator.Generator on top of the sys_sequences table.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "restostock/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for ctx, so numbers can be drawn
// inside the caller's transaction.
type QuerierFunc func(ctx context.Context) Querier

type cachedRange struct {
	current int64
	max     int64
}

// Service provides document numbering backed by PostgreSQL.
type Service struct {
	querier QuerierFunc

	// cacheMu protects ranges map
	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator service with a static querier.
func New(querier Querier) *Service {
	return NewWithResolver(func(context.Context) Querier { return querier })
}

// NewWithResolver creates a numerator service that resolves its querier per call.
func NewWithResolver(resolve QuerierFunc) *Service {
	return &Service{
		querier: resolve,
		ranges:  make(map[string]*cachedRange),
	}
}

// GetNextNumber generates the next document number.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, opts *corenumerator.Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = corenumerator.DefaultOptions()
	}

	key := corenumerator.SequenceKey(cfg, period)

	var (
		num int64
		err error
	)
	switch opts.Strategy {
	case corenumerator.StrategyCached:
		num, err = s.getNextCached(ctx, key, opts)
	default:
		num, err = s.getNextStrict(ctx, key)
	}
	if err != nil {
		return "", err
	}

	return corenumerator.Format(cfg, period, num), nil
}

// getNextStrict increments the sequence with UPSERT + RETURNING.
// The row lock taken by the upsert serializes concurrent callers.
func (s *Service) getNextStrict(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("strict next: %w", err)
	}
	return num, nil
}

// getNextCached serves numbers from memory, reserving a new range when exhausted.
func (s *Service) getNextCached(ctx context.Context, key string, opts *corenumerator.Options) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, exists := s.ranges[key]
	if !exists {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		size := opts.RangeSize
		if size <= 0 {
			size = 50
		}

		var newMax int64
		err := s.querier(ctx).QueryRow(ctx, `
			INSERT INTO sys_sequences (key, current_val)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
			RETURNING current_val
		`, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}

		// Range is (newMax - size, newMax].
		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNextNumber overwrites the stored sequence value.
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	key := corenumerator.SequenceKey(cfg, period)

	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)
	if err != nil {
		return fmt.Errorf("set sequence: %w", err)
	}

	s.cacheMu.Lock()
	delete(s.ranges, key)
	s.cacheMu.Unlock()
	return nil
}
