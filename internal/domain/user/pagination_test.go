package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeUsers(n int) []User {
	users := make([]User, n)
	for i := range users {
		users[i] = User{ID: int64(i + 1)}
	}
	return users
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name           string
		total, page    int64
		wantPage       int64
		wantTotalPages int64
	}{
		{"empty collection has one page", 0, 1, 1, 1},
		{"exact multiple", 26, 1, 1, 2},
		{"one over", 14, 2, 2, 2},
		{"page below range is clamped", 14, 0, 1, 2},
		{"page above range is clamped", 14, 9, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, tt.page, PageSize)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantTotalPages, p.TotalPages)
		})
	}
}

func TestPagination_PageSizeBound(t *testing.T) {
	for total := 1; total <= 60; total++ {
		users := makeUsers(total)
		first := NewPagination(int64(total), 1, PageSize)

		for page := int64(1); page <= first.TotalPages; page++ {
			p := NewPagination(int64(total), page, PageSize)
			got := p.Slice(users)
			assert.LessOrEqual(t, len(got), PageSize)

			if page == first.TotalPages {
				want := total % PageSize
				if want == 0 {
					want = PageSize
				}
				assert.Len(t, got, want, "last page of %d records", total)
			}
		}
	}
}

func TestPagination_FourteenRecords(t *testing.T) {
	users := makeUsers(14)

	p1 := NewPagination(14, 1, PageSize)
	assert.False(t, p1.HasPrev())
	assert.True(t, p1.HasNext())
	assert.Len(t, p1.Slice(users), 13)

	p2 := NewPagination(14, 2, PageSize)
	assert.True(t, p2.HasPrev())
	assert.False(t, p2.HasNext())
	got := p2.Slice(users)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(14), got[0].ID)

	start, end := p2.Bounds()
	assert.Equal(t, int64(13), start)
	assert.Equal(t, int64(14), end)
}

func TestPagination_Valid(t *testing.T) {
	p := NewPagination(14, 1, PageSize)
	assert.False(t, p.Valid(0))
	assert.True(t, p.Valid(1))
	assert.True(t, p.Valid(2))
	assert.False(t, p.Valid(3))
}
