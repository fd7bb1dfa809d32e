package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name                 string
		page, perPage, total int
		want                 Pagination
		hasPrev, hasNext     bool
	}{
		{"empty listing", 1, 20, 0, Pagination{Page: 1, PerPage: 20, Total: 0, TotalPages: 1}, false, false},
		{"middle page", 2, 20, 45, Pagination{Page: 2, PerPage: 20, Total: 45, TotalPages: 3}, true, true},
		{"bad input", -1, 0, -5, Pagination{Page: 1, PerPage: DefaultPerPage, Total: 0, TotalPages: 1}, false, false},
		{"last page", 3, 10, 30, Pagination{Page: 3, PerPage: 10, Total: 30, TotalPages: 3}, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewPagination(tc.page, tc.perPage, tc.total)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.hasPrev, got.HasPrev())
			assert.Equal(t, tc.hasNext, got.HasNext())
		})
	}
}
