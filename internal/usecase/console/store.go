package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-console/internal/domain/user"
	apperrors "user-console/pkg/errors"
)

// ErrStoreClosed is returned by every operation on a closed Store, and in
// place of results that arrive after Close.
var ErrStoreClosed = errors.New("console store closed")

// ErrStaleForm is returned when a form submits after it was closed or replaced.
var ErrStaleForm = errors.New("form is no longer open")

// Store owns the canonical in-memory list of user records, the current page,
// the selection and the open form. It orchestrates fetch/add/edit/delete
// against the remote users API.
//
// State is guarded by mu. Remote calls are made without holding it and their
// results are applied once they complete.
type Store struct {
	remote   Remote
	notify   Notifier
	log      *zap.Logger
	validate *validator.Validate

	// lifetime bounds every remote call made on behalf of this store
	lifetime context.Context
	cancel   context.CancelFunc

	mu        sync.Mutex
	records   []domain.User
	page      int64
	selected  *domain.User
	form      *Form
	loadStart bool
	loaded    bool
	errMsg    string
	closed    bool
}

// NewStore creates an empty Store on page 1.
func NewStore(remote Remote, notify Notifier, log *zap.Logger) *Store {
	lifetime, cancel := context.WithCancel(context.Background())
	return &Store{
		remote:   remote,
		notify:   notify,
		log:      log,
		validate: validator.New(),
		lifetime: lifetime,
		cancel:   cancel,
		page:     1,
	}
}

// Dispatch routes a command to the matching operation.
func (s *Store) Dispatch(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case Load:
		return s.Load(ctx)
	case AddOrEdit:
		return s.addOrEdit(c.Record, c.origin)
	case Delete:
		return s.Delete(ctx, c.ID)
	case BeginEdit:
		return s.BeginEdit(c.Record)
	case BeginAdd:
		return s.BeginAdd()
	case CloseForm:
		return s.CloseForm()
	case Paginate:
		if !s.Paginate(c.Page) {
			return apperrors.NewValidationError("page", fmt.Sprintf("page %d is out of range", c.Page))
		}
		return nil
	default:
		return fmt.Errorf("unknown console command %T", cmd)
	}
}

// call derives a context for one remote call: cancelled when ctx is, or when
// the store is closed.
func (s *Store) call(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.lifetime, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

// EnsureLoaded issues the initial Load exactly once per Store.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	if s.loadStart || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.loadStart = true
	s.mu.Unlock()

	return s.Load(ctx)
}

// Load replaces the collection with the remote one. On failure the collection
// is left as it was and an error notification is emitted.
func (s *Store) Load(ctx context.Context) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	callCtx, done := s.call(ctx)
	users, err := s.remote.ListUsers(callCtx)
	done()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.loadStart = true

	if err != nil {
		s.errMsg = fmt.Sprintf("Failed to fetch users: %v", err)
		s.log.Error("failed to load users", zap.Error(err))
		s.notify.Error("Failed to fetch users")
		return err
	}

	s.records = append([]domain.User(nil), users...)
	s.loaded = true
	s.errMsg = ""
	s.clampPageLocked()
	s.log.Debug("users loaded", zap.Int("count", len(users)))
	return nil
}

// AddOrEdit merges record into the collection. With a selection it replaces
// the selected entry; otherwise it appends record under max(id)+1, or 1 when
// the collection is empty. The form is closed either way.
func (s *Store) AddOrEdit(record domain.User) error {
	return s.addOrEdit(record, nil)
}

// addOrEdit applies AddOrEdit. A non-nil origin is the form that produced
// record; if that form is no longer the open one the result is dropped, since
// the selection it was made against is gone.
func (s *Store) addOrEdit(record domain.User, origin *Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if origin != nil && s.form != origin {
		s.log.Warn("dropping result of a form that is no longer open", zap.Int64("id", record.ID))
		return ErrStaleForm
	}

	defer s.closeFormLocked()

	if s.selected != nil {
		record.ID = s.selected.ID
		idx := s.indexLocked(record.ID)
		if idx < 0 {
			s.log.Warn("edited user no longer in collection", zap.Int64("id", record.ID))
			s.notify.Error("User no longer exists")
			return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", record.ID))
		}
		s.records[idx] = record
		s.log.Info("user updated", zap.Int64("id", record.ID))
		s.notify.Success("User updated successfully")
		return nil
	}

	record.ID = domain.MaxID(s.records) + 1
	s.records = append(s.records, record)
	s.log.Info("user added", zap.Int64("id", record.ID))
	s.notify.Success("User added successfully")
	return nil
}

// Delete removes the record remotely and, on success, locally. Nothing is
// removed before the remote call succeeds.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	callCtx, done := s.call(ctx)
	err := s.remote.DeleteUser(callCtx, id)
	done()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if err != nil {
		s.errMsg = fmt.Sprintf("Failed to delete user: %v", err)
		s.log.Error("failed to delete user", zap.Int64("id", id), zap.Error(err))
		s.notify.Error("Failed to delete user")
		return err
	}

	if idx := s.indexLocked(id); idx >= 0 {
		s.records = append(s.records[:idx], s.records[idx+1:]...)
	}
	if s.selected != nil && s.selected.ID == id {
		s.closeFormLocked()
	}
	s.clampPageLocked()
	s.log.Info("user deleted", zap.Int64("id", id))
	s.notify.Success("User deleted successfully")
	return nil
}

// BeginEdit selects record and opens the form with a copy of it.
func (s *Store) BeginEdit(record domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	selected := record
	s.selected = &selected
	s.form = newForm(s, &selected)
	return nil
}

// BeginAdd clears the selection and opens an empty form.
func (s *Store) BeginAdd() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.selected = nil
	s.form = newForm(s, nil)
	return nil
}

// CloseForm clears the selection and closes the form.
func (s *Store) CloseForm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.closeFormLocked()
	return nil
}

// Paginate moves to page when it lies in [1, totalPages] and reports whether
// it did.
func (s *Store) Paginate(page int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	p := domain.NewPagination(int64(len(s.records)), s.page, domain.PageSize)
	if !p.Valid(page) {
		return false
	}
	s.page = page
	return true
}

// Form returns the open form, or nil.
func (s *Store) Form() *Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Records returns a copy of the collection in order.
func (s *Store) Records() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.User(nil), s.records...)
}

// Close cancels in-flight remote calls. Results arriving afterwards are
// discarded and every later operation returns ErrStoreClosed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.form = nil
	s.selected = nil
	s.mu.Unlock()

	s.cancel()
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) indexLocked(id int64) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) closeFormLocked() {
	s.selected = nil
	s.form = nil
}

// clampPageLocked keeps the page pointer valid after the collection shrinks.
func (s *Store) clampPageLocked() {
	s.page = domain.NewPagination(int64(len(s.records)), s.page, domain.PageSize).Page
}
