package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

func TestPaginate_Boundary(t *testing.T) {
	page := Paginate(makeItems(25), 3, 10)

	assert.Len(t, page.Items, 5)
	assert.Equal(t, []int{21, 22, 23, 24, 25}, page.Items)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.HasNextPage)
	assert.True(t, page.HasPrevPage)
}

func TestPaginate_Properties(t *testing.T) {
	for total := 0; total <= 31; total++ {
		items := makeItems(total)
		for pageSize := 1; pageSize <= 12; pageSize++ {
			for page := 1; page <= 8; page++ {
				p := Paginate(items, page, pageSize)

				want := max(0, min(pageSize, total-(page-1)*pageSize))
				assert.Len(t, p.Items, want, "total=%d page=%d size=%d", total, page, pageSize)
				assert.Equal(t, page*pageSize < total, p.HasNextPage, "total=%d page=%d size=%d", total, page, pageSize)
				assert.Equal(t, page > 1, p.HasPrevPage)
			}
		}
	}
}

func TestPaginate_Defaults(t *testing.T) {
	p := Paginate(makeItems(15), 0, 0)

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, 2, p.TotalPages)
}

func TestPaginate_OutOfRange(t *testing.T) {
	p := Paginate(makeItems(5), 4, 10)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNextPage)

	huge := Paginate(makeItems(5), 1<<40, 1<<40)
	assert.Empty(t, huge.Items)
}

func TestPaginate_EmptyCollection(t *testing.T) {
	p := Paginate([]Record{}, 1, 10)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Items)
}
