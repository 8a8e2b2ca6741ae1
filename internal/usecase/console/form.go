package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-console/internal/domain/user"
	apperrors "user-console/pkg/errors"
)

// Field names accepted by Form.Change.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldDepartment = "department"
	fieldCompany    = "company" // alias of department
)

// submission is the draft as validated on Submit.
type submission struct {
	Name       string `validate:"required"`
	Email      string `validate:"required"`
	Department string `validate:"required"`
}

// Form holds the draft of one record being created or edited. It talks to the
// remote API itself and reports the saved record back to the Store through
// Dispatch.
type Form struct {
	store    *Store
	remote   Remote
	dispatch Dispatcher
	validate *validator.Validate
	log      *zap.Logger

	mu       sync.Mutex
	selected *domain.User // nil when adding
	draft    domain.Input
	err      string
}

func newForm(s *Store, selected *domain.User) *Form {
	f := &Form{
		store:    s,
		remote:   s.remote,
		dispatch: s,
		validate: s.validate,
		log:      s.log,
	}
	if selected != nil {
		sel := *selected
		f.selected = &sel
		f.draft = sel.Input()
	}
	return f
}

// Editing reports whether the form edits an existing record.
func (f *Form) Editing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected != nil
}

// SelectedID returns the id of the record being edited, or 0 when adding.
func (f *Form) SelectedID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selected == nil {
		return 0
	}
	return f.selected.ID
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() domain.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Error returns the inline error message, if any.
func (f *Form) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Change updates one field of the draft. "department" (or "company") writes
// company.name.
func (f *Form) Change(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch strings.ToLower(field) {
	case FieldName:
		f.draft.Name = value
	case FieldEmail:
		f.draft.Email = value
	case FieldDepartment, fieldCompany:
		f.draft.Company.Name = value
	default:
		return apperrors.NewValidationError(field, "unknown field")
	}
	return nil
}

// Submit validates the draft and saves it remotely: create when adding,
// update keyed by the selected id when editing.
//
// A validation failure sets the inline error and makes no network call. A
// network failure sets the inline error and keeps the form open with the
// draft intact. On success the saved record is dispatched as AddOrEdit, which
// clears the selection and closes the form, and the draft is reset.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	in := domain.Input{
		Name:    strings.TrimSpace(f.draft.Name),
		Email:   strings.TrimSpace(f.draft.Email),
		Company: domain.Company{Name: strings.TrimSpace(f.draft.Company.Name)},
	}
	var selected *domain.User
	if f.selected != nil {
		sel := *f.selected
		selected = &sel
	}
	f.mu.Unlock()

	if err := f.validate.Struct(submission{Name: in.Name, Email: in.Email, Department: in.Company.Name}); err != nil {
		verr := formatValidationError(err)
		f.setError(verr.Error())
		f.log.Debug("form validation failed", zap.Error(verr))
		return verr
	}

	callCtx, done := f.store.call(ctx)
	var (
		saved *domain.User
		err   error
	)
	if selected != nil {
		saved, err = f.remote.UpdateUser(callCtx, selected.ID, in)
	} else {
		saved, err = f.remote.CreateUser(callCtx, in)
	}
	done()

	if err != nil {
		op := "create"
		if selected != nil {
			op = "update"
		}
		f.setError(fmt.Sprintf("Failed to %s user: %v", op, err))
		f.log.Error("failed to save user", zap.String("op", op), zap.Error(err))
		return err
	}
	if saved == nil {
		saved = &domain.User{Name: in.Name, Email: in.Email, Company: in.Company}
	}

	if err := f.dispatch.Dispatch(ctx, AddOrEdit{Record: *saved, origin: f}); err != nil {
		if errors.Is(err, ErrStaleForm) || errors.Is(err, ErrStoreClosed) {
			return err
		}
		f.setError(err.Error())
		return err
	}

	f.mu.Lock()
	f.draft = domain.Input{}
	f.selected = nil
	f.err = ""
	f.mu.Unlock()
	return nil
}

// Cancel discards the draft and closes the form. No network call is made.
func (f *Form) Cancel(ctx context.Context) error {
	f.mu.Lock()
	f.draft = domain.Input{}
	f.selected = nil
	f.err = ""
	f.mu.Unlock()

	return f.dispatch.Dispatch(ctx, CloseForm{})
}

func (f *Form) setError(msg string) {
	f.mu.Lock()
	f.err = msg
	f.mu.Unlock()
}

// formatValidationError converts validator.ValidationErrors into a single
// human-readable ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	var messages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return apperrors.NewValidationError("", strings.Join(messages, ", "))
}
