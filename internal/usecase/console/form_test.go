package console

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "user-console/internal/domain/user"
	apperrors "user-console/pkg/errors"
)

func fillForm(t *testing.T, f *Form, name, email, department string) {
	require.NoError(t, f.Change(FieldName, name))
	require.NoError(t, f.Change(FieldEmail, email))
	require.NoError(t, f.Change(FieldDepartment, department))
}

func TestForm_InitialDraft(t *testing.T) {
	s, _, _ := setupTestStore(t)

	require.NoError(t, s.BeginAdd())
	assert.Equal(t, domain.Input{}, s.Form().Draft())
	assert.False(t, s.Form().Editing())

	u := domain.User{ID: 5, Name: "Chelsey Dietrich", Email: "c@x.com", Company: domain.Company{Name: "Keebler LLC"}}
	require.NoError(t, s.BeginEdit(u))
	assert.Equal(t, u.Input(), s.Form().Draft())
	assert.True(t, s.Form().Editing())
}

func TestForm_Change(t *testing.T) {
	s, _, _ := setupTestStore(t)
	require.NoError(t, s.BeginAdd())
	f := s.Form()

	require.NoError(t, f.Change("name", "Jane Doe"))
	require.NoError(t, f.Change("Email", "j@x.com"))
	require.NoError(t, f.Change("company", "Eng"))

	assert.Equal(t, domain.Input{Name: "Jane Doe", Email: "j@x.com", Company: domain.Company{Name: "Eng"}}, f.Draft())

	err := f.Change("phone", "555")
	assert.True(t, apperrors.IsValidation(err))
}

func TestForm_SubmitValidationNeverCallsRemote(t *testing.T) {
	cases := []struct {
		name, fullName, email, department string
		wantMsg                           string
	}{
		{"missing name", "", "j@x.com", "Eng", "Name is required"},
		{"missing email", "Jane Doe", "", "Eng", "Email is required"},
		{"missing department", "Jane Doe", "j@x.com", "", "Department is required"},
		{"blank department", "Jane Doe", "j@x.com", "   ", "Department is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, remote, _ := setupTestStore(t)
			users := seedUsers(1)
			loadStore(t, s, remote, users)
			require.NoError(t, s.BeginAdd())
			f := s.Form()
			fillForm(t, f, tc.fullName, tc.email, tc.department)

			err := f.Submit(context.Background())

			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, f.Error(), tc.wantMsg)
			assert.Same(t, f, s.Form(), "form stays open")
			assert.Equal(t, users, s.Records())
			remote.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
			remote.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestForm_SubmitCreate(t *testing.T) {
	s, remote, notices := setupTestStore(t)
	loadStore(t, s, remote, []domain.User{{ID: 1, Name: "Leanne Graham"}})
	require.NoError(t, s.BeginAdd())
	f := s.Form()
	fillForm(t, f, "Jane Doe", "j@x.com", "Eng")

	want := domain.Input{Name: "Jane Doe", Email: "j@x.com", Company: domain.Company{Name: "Eng"}}
	remote.On("CreateUser", mock.Anything, want).
		Return(&domain.User{ID: 11, Name: "Jane Doe", Email: "j@x.com", Company: domain.Company{Name: "Eng"}}, nil).Once()

	require.NoError(t, f.Submit(context.Background()))

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[1].ID)
	assert.Nil(t, s.Form())
	assert.Equal(t, domain.Input{}, f.Draft())
	assert.Equal(t, "User added successfully", lastNotice(t, notices).Message)
	remote.AssertExpectations(t)
}

func TestForm_SubmitUpdate(t *testing.T) {
	s, remote, _ := setupTestStore(t)
	users := seedUsers(3)
	loadStore(t, s, remote, users)
	require.NoError(t, s.BeginEdit(users[2]))
	f := s.Form()
	require.NoError(t, f.Change(FieldName, "Renamed Person"))

	want := users[2].Input()
	want.Name = "Renamed Person"
	saved := &domain.User{ID: 3, Name: "Renamed Person", Email: want.Email, Company: want.Company}
	remote.On("UpdateUser", mock.Anything, int64(3), want).Return(saved, nil).Once()

	require.NoError(t, f.Submit(context.Background()))

	records := s.Records()
	require.Len(t, records, 3)
	assert.Equal(t, *saved, records[2])
	assert.Nil(t, s.Form())
	remote.AssertExpectations(t)
}

func TestForm_SubmitNetworkFailureKeepsDraft(t *testing.T) {
	s, remote, _ := setupTestStore(t)
	users := seedUsers(1)
	loadStore(t, s, remote, users)
	require.NoError(t, s.BeginAdd())
	f := s.Form()
	fillForm(t, f, "Jane Doe", "j@x.com", "Eng")
	remote.On("CreateUser", mock.Anything, mock.Anything).Return(nil, apperrors.NewNetworkError("create", 0, context.DeadlineExceeded)).Once()

	err := f.Submit(context.Background())

	assert.True(t, apperrors.IsNetwork(err))
	assert.Contains(t, f.Error(), "Failed to create user")
	assert.Same(t, f, s.Form())
	assert.Equal(t, "Jane Doe", f.Draft().Name)
	assert.Equal(t, users, s.Records())

	// retry without re-entering data
	remote.On("CreateUser", mock.Anything, mock.Anything).Return(&domain.User{Name: "Jane Doe", Email: "j@x.com", Company: domain.Company{Name: "Eng"}}, nil).Once()
	require.NoError(t, f.Submit(context.Background()))
	assert.Len(t, s.Records(), 2)
}

func TestForm_Cancel(t *testing.T) {
	s, remote, _ := setupTestStore(t)
	users := seedUsers(2)
	loadStore(t, s, remote, users)
	require.NoError(t, s.BeginEdit(users[0]))
	f := s.Form()
	require.NoError(t, f.Change(FieldName, "Changed"))

	require.NoError(t, f.Cancel(context.Background()))

	assert.Nil(t, s.Form())
	assert.Equal(t, users, s.Records())
	remote.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestForm_StaleSubmitIsDropped(t *testing.T) {
	s, remote, _ := setupTestStore(t)
	users := seedUsers(2)
	loadStore(t, s, remote, users)
	require.NoError(t, s.BeginEdit(users[0]))
	stale := s.Form()
	fillForm(t, stale, "Stale Edit", "s@x.com", "Eng")

	started := make(chan struct{})
	release := make(chan struct{})
	remote.On("UpdateUser", mock.Anything, int64(1), mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(&domain.User{ID: 1, Name: "Stale Edit"}, nil).Once()

	errCh := make(chan error, 1)
	go func() { errCh <- stale.Submit(context.Background()) }()

	<-started
	require.NoError(t, s.BeginEdit(users[1]))
	close(release)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrStaleForm)
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not return")
	}
	assert.Equal(t, users, s.Records())
	require.NotNil(t, s.Form())
	assert.Equal(t, int64(2), s.Form().SelectedID())
}

func TestNotifications_Expire(t *testing.T) {
	now := testNow
	n := NewNotificationsWithClock(3*time.Second, func() time.Time { return now })

	n.Success("saved")
	now = now.Add(time.Second)
	n.Error("failed")

	require.Len(t, n.Active(), 2)

	now = testNow.Add(3 * time.Second)
	active := n.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "failed", active[0].Message)

	n.Dismiss(active[0].ID)
	assert.Empty(t, n.Active())
}

func TestNotifications_Capped(t *testing.T) {
	n := NewNotificationsWithClock(time.Minute, func() time.Time { return testNow })
	for i := 0; i < maxNotices+5; i++ {
		n.Error("x")
	}
	assert.Len(t, n.Active(), maxNotices)
}
