package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restostock/internal/domain"
)

func TestListQuery(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", "test", []string{"id", "name"}, []string{"name", "code"}, func() any { return nil })

	tests := []struct {
		name     string
		filter   domain.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "active only",
			filter:   domain.ListFilter{},
			wantSQL:  "SELECT id, name FROM test_table WHERE is_active = $1",
			wantArgs: []any{true},
		},
		{
			name:     "include inactive",
			filter:   domain.ListFilter{IncludeInactive: true},
			wantSQL:  "SELECT id, name FROM test_table",
			wantArgs: nil,
		},
		{
			name:     "search",
			filter:   domain.ListFilter{Search: "dom", IncludeInactive: true},
			wantSQL:  "SELECT id, name FROM test_table WHERE (name ILIKE $1 OR code ILIKE $2)",
			wantArgs: []any{"%dom%", "%dom%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.listQuery(tt.filter).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
