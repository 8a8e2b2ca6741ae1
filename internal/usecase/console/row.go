package console

import domain "user-console/internal/domain/user"

// Row is the display form of one record plus its two actions.
type Row struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Department string

	record domain.User
}

// NewRow builds a Row. It reports false for a nil record, which renders nothing.
func NewRow(u *domain.User) (Row, bool) {
	if u == nil {
		return Row{}, false
	}
	return Row{
		ID:         u.ID,
		FirstName:  u.FirstName(),
		LastName:   u.LastName(),
		Email:      u.Email,
		Department: u.Department(),
		record:     *u,
	}, true
}

// Edit returns the command that opens the form on this row's record.
func (r Row) Edit() Command {
	return BeginEdit{Record: r.record}
}

// Delete returns the command that deletes this row's record.
func (r Row) Delete() Command {
	return Delete{ID: r.ID}
}

// Record returns a copy of the underlying record.
func (r Row) Record() domain.User {
	return r.record
}
