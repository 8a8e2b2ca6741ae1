package console

import (
	"context"

	domain "user-console/internal/domain/user"
)

// Command is an intent sent from a Row, a Form or a rendering surface to the
// Store. The set is closed: only the types in this file implement it.
type Command interface {
	command()
}

// Dispatcher accepts commands. *Store is the only implementation.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) error
}

// Load re-reads the whole collection from the remote API.
type Load struct{}

// AddOrEdit merges a record returned by the remote API into the collection.
type AddOrEdit struct {
	Record domain.User

	origin *Form
}

// Delete removes a record remotely, then locally.
type Delete struct {
	ID int64
}

// BeginEdit selects a record and opens the form on it.
type BeginEdit struct {
	Record domain.User
}

// BeginAdd clears the selection and opens an empty form.
type BeginAdd struct{}

// CloseForm clears the selection and closes the form without saving.
type CloseForm struct{}

// Paginate moves to a page.
type Paginate struct {
	Page int64
}

func (Load) command()      {}
func (AddOrEdit) command() {}
func (Delete) command()    {}
func (BeginEdit) command() {}
func (BeginAdd) command()  {}
func (CloseForm) command() {}
func (Paginate) command()  {}
