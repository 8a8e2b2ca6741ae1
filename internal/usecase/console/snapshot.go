package console

import domain "user-console/internal/domain/user"

// Snapshot is a read-only view of the Store for renderers.
type Snapshot struct {
	Rows       []Row
	Pagination domain.Pagination
	Loaded     bool
	Error      string
	Form       *FormState // nil when the form is closed
	Notices    []Notice
}

// FormState is the renderable state of the open form.
type FormState struct {
	Editing bool
	ID      int64
	Draft   domain.Input
	Error   string
}

// noticeFeed is implemented by notifiers that keep their notices, such as
// *Notifications.
type noticeFeed interface {
	Active() []Notice
}

// Snapshot captures the visible page, the form and the active notices.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	p := domain.NewPagination(int64(len(s.records)), s.page, domain.PageSize)
	visible := p.Slice(s.records)

	rows := make([]Row, 0, len(visible))
	for i := range visible {
		if row, ok := NewRow(&visible[i]); ok {
			rows = append(rows, row)
		}
	}

	snap := Snapshot{
		Rows:       rows,
		Pagination: *p,
		Loaded:     s.loaded,
		Error:      s.errMsg,
	}
	form := s.form
	s.mu.Unlock()

	if form != nil {
		snap.Form = &FormState{
			Editing: form.Editing(),
			ID:      form.SelectedID(),
			Draft:   form.Draft(),
			Error:   form.Error(),
		}
	}

	if feed, ok := s.notify.(noticeFeed); ok {
		snap.Notices = feed.Active()
	}

	return snap
}
