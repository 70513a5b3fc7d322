package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()

	assert.False(t, a.IsZero())
	assert.NotEqual(t, a, b)
	assert.Len(t, a.String(), 36)
}

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Pagination
		want Pagination
	}{
		{"zero value gets defaults", Pagination{}, Pagination{Page: 1, PageSize: DefaultPageSize}},
		{"negative page clamped", Pagination{Page: -3, PageSize: 10}, Pagination{Page: 1, PageSize: 10}},
		{"oversized page size clamped", Pagination{Page: 2, PageSize: 500}, Pagination{Page: 2, PageSize: MaxPageSize}},
		{"valid passes through", Pagination{Page: 4, PageSize: 25}, Pagination{Page: 4, PageSize: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.Offset())
}

func TestPaginationTotalPages(t *testing.T) {
	p := Pagination{Page: 1, PageSize: 20}

	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 2, p.TotalPages(21))
	assert.Equal(t, 5, p.TotalPages(100))
}

func TestSortOrderValid(t *testing.T) {
	assert.True(t, SortAsc.Valid())
	assert.True(t, SortDesc.Valid())
	assert.False(t, SortOrder("sideways").Valid())
}
