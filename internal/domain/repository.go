// Package domain provides the types shared by domain repositories and services.
package domain

// ListFilter contains common paging options for list operations.
type ListFilter struct {
	// Search matches against name/code (case-insensitive substring)
	Search string

	// IncludeInactive includes deactivated records
	IncludeInactive bool

	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: 50}
}

// Normalize clamps the paging values.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
