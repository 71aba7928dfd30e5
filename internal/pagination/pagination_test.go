package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginator_Page(t *testing.T) {
	p := New(PostsPerPage)

	tests := []struct {
		name       string
		total      int64
		raw        string
		wantNumber int
		wantPages  int
		wantOffset int
	}{
		{"first page by default", 13, "", 1, 2, 0},
		{"second page", 13, "2", 2, 2, 10},
		{"past the end clamps to last", 13, "99", 2, 2, 10},
		{"zero selects first", 13, "0", 1, 2, 0},
		{"negative selects first", 13, "-3", 1, 2, 0},
		{"garbage selects first", 13, "abc", 1, 2, 0},
		{"last keyword", 25, "last", 3, 3, 20},
		{"overflowing number clamps to last", 13, "99999999999999999999", 2, 2, 10},
		{"overflowing negative selects first", 13, "-99999999999999999999", 1, 2, 0},
		{"empty set has one page", 0, "5", 1, 1, 0},
		{"exact multiple", 20, "2", 2, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := p.Page(tt.total, tt.raw)
			assert.Equal(t, tt.wantNumber, m.Number)
			assert.Equal(t, tt.wantPages, m.NumPages)
			assert.Equal(t, tt.wantOffset, m.Offset())
			assert.Equal(t, PostsPerPage, m.Limit())
		})
	}
}

func TestMeta_Navigation(t *testing.T) {
	p := New(10)

	first := p.Page(13, "1")
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())
	assert.Equal(t, 2, first.NextPageNumber())
	assert.Equal(t, int64(1), first.StartIndex())
	assert.Equal(t, int64(10), first.EndIndex())

	last := p.Page(13, "2")
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrevious())
	assert.Equal(t, 1, last.PreviousPageNumber())
	assert.Equal(t, int64(11), last.StartIndex())
	assert.Equal(t, int64(13), last.EndIndex())
	assert.Equal(t, []int{1, 2}, last.PageRange())

	empty := p.Page(0, "")
	assert.False(t, empty.HasOtherPages())
	assert.Equal(t, int64(0), empty.StartIndex())
	assert.Equal(t, int64(0), empty.EndIndex())
}

func TestNew_FallsBackToDefaultSize(t *testing.T) {
	assert.Equal(t, PostsPerPage, New(0).PerPage())
	assert.Equal(t, 3, New(3).PerPage())
}

func TestNewPage(t *testing.T) {
	meta := New(10).Page(3, "1")
	page := NewPage([]string{"a", "b", "c"}, meta)
	assert.Equal(t, 3, page.Len())
	assert.Equal(t, 1, page.Number)

	empty := NewPage[string](nil, New(10).Page(0, ""))
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.Len())
}
