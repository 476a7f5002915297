package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      PaginationParams
		page    int
		perPage int
	}{
		{name: "zero values", in: PaginationParams{}, page: 1, perPage: DefaultPerPage},
		{name: "over max", in: PaginationParams{Page: 3, PerPage: 500}, page: 3, perPage: MaxPerPage},
		{name: "negative page", in: PaginationParams{Page: -2, PerPage: 10}, page: 1, perPage: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Validate()
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.perPage, p.PerPage)
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)

	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, total := Slice(items, &PaginationParams{Page: 2, PerPage: 2})
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, int64(5), total)

	page, _ = Slice(items, &PaginationParams{Page: 3, PerPage: 2})
	assert.Equal(t, []int{5}, page)

	page, total = Slice(items, &PaginationParams{Page: 9, PerPage: 2})
	assert.Empty(t, page)
	assert.Equal(t, int64(5), total)
}
