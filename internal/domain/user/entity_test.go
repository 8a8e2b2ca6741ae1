package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name      string
		full      string
		wantFirst string
		wantLast  string
	}{
		{"two parts", "Jane Doe", "Jane", "Doe"},
		{"three parts", "Jane Mary Doe", "Jane", "Mary Doe"},
		{"single", "Cher", "Cher", ""},
		{"empty", "", "", ""},
		{"leading space", " Doe", "", "Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitName(tt.full)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestUser_DerivedFields(t *testing.T) {
	u := User{ID: 3, Name: "Clementine Bauch", Email: "c@x.com", Company: Company{Name: "Romaguera-Jacobson"}}

	assert.Equal(t, "Clementine", u.FirstName())
	assert.Equal(t, "Bauch", u.LastName())
	assert.Equal(t, "Romaguera-Jacobson", u.Department())
	assert.Equal(t, Input{Name: u.Name, Email: u.Email, Company: u.Company}, u.Input())
}

func TestMaxID(t *testing.T) {
	assert.Equal(t, int64(0), MaxID(nil))
	assert.Equal(t, int64(9), MaxID([]User{{ID: 4}, {ID: 9}, {ID: 2}}))
}
