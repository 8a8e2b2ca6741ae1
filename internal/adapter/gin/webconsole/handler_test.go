package webconsole

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-console/internal/domain/user"
	apperrors "user-console/pkg/errors"
)

// MockRemote is a mock implementation of console.Remote
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockRemote) CreateUser(ctx context.Context, in domain.Input) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRemote) UpdateUser(ctx context.Context, id int64, in domain.Input) (*domain.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRemote) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func seedUsers(n int) []domain.User {
	users := make([]domain.User, n)
	for i := range users {
		id := int64(i + 1)
		users[i] = domain.User{
			ID:      id,
			Name:    fmt.Sprintf("First%d Last%d", id, id),
			Email:   fmt.Sprintf("user%d@example.com", id),
			Company: domain.Company{Name: fmt.Sprintf("Dept%d", id)},
		}
	}
	return users
}

type testClient struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func setupConsole(t *testing.T) (*testClient, *MockRemote, *Registry) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	remote := new(MockRemote)
	registry := NewRegistry(remote, RegistryConfig{SessionTTL: time.Hour, NotificationTTL: time.Minute}, log)
	t.Cleanup(registry.Close)

	router, err := SetupRouter(NewHandler(registry, Config{ServiceName: "user-console"}, log), log)
	require.NoError(t, err)
	return &testClient{t: t, router: router}, remote, registry
}

func (c *testClient) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return w
}

func (c *testClient) page(path string) string {
	w := c.do(http.MethodGet, path, nil)
	require.Equal(c.t, http.StatusOK, w.Code)
	return w.Body.String()
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, location, w.Header().Get("Location"))
}

func TestIndex_LoadsOnceAndRendersFirstPage(t *testing.T) {
	c, remote, registry := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(14), nil).Once()

	body := c.page("/")
	require.NotNil(t, c.cookie)
	assert.Equal(t, 1, registry.Len())

	assert.Contains(t, body, "<th>First Name</th>")
	assert.Contains(t, body, "First1")
	assert.Contains(t, body, "Last13")
	assert.NotContains(t, body, "user14@example.com")
	assert.Contains(t, body, "Page 1 of 2")
	assert.Contains(t, body, `<span aria-disabled="true">Prev</span>`)
	assert.Contains(t, body, `href="/?page=2"`)

	body = c.page("/?page=2")
	assert.Contains(t, body, "user14@example.com")
	assert.NotContains(t, body, "user1@example.com")
	assert.Contains(t, body, `<span aria-disabled="true">Next</span>`)

	remote.AssertNumberOfCalls(t, "ListUsers", 1)
	assert.Equal(t, 1, registry.Len())
}

func TestIndex_InvalidPageIgnored(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(3), nil).Once()

	body := c.page("/?page=7")
	assert.Contains(t, body, "Page 1 of 1")

	body = c.page("/?page=abc")
	assert.Contains(t, body, "Page 1 of 1")
}

func TestIndex_LoadFailure(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).
		Return(nil, apperrors.NewNetworkError("list users", 0, errors.New("connection refused"))).Once()

	body := c.page("/")
	assert.Contains(t, body, "Failed to fetch users")
	assert.Contains(t, body, "Page 1 of 1")
}

func TestReload_RefetchesCollection(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(2), nil).Once()
	remote.On("ListUsers", mock.Anything).Return(seedUsers(3), nil).Once()

	c.page("/")
	assertRedirect(t, c.do(http.MethodPost, "/reload", url.Values{}), "/?page=1")

	body := c.page("/")
	assert.Contains(t, body, "user3@example.com")
	remote.AssertNumberOfCalls(t, "ListUsers", 2)
}

func TestAddUser_Flow(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(2), nil).Once()
	in := domain.Input{Name: "Jane Doe", Email: "jane@example.com", Company: domain.Company{Name: "Research"}}
	remote.On("CreateUser", mock.Anything, in).
		Return(&domain.User{ID: 11, Name: "Jane Doe", Email: "jane@example.com", Company: domain.Company{Name: "Research"}}, nil).Once()

	c.page("/")
	assertRedirect(t, c.do(http.MethodPost, "/users/new", url.Values{}), "/?page=1")
	assert.Contains(t, c.page("/"), "New user")

	w := c.do(http.MethodPost, "/form", url.Values{
		"name":       {" Jane Doe "},
		"email":      {"jane@example.com"},
		"department": {"Research"},
	})
	assertRedirect(t, w, "/?page=1")

	body := c.page("/")
	assert.NotContains(t, body, "New user")
	assert.Contains(t, body, "User added successfully")
	assert.Contains(t, body, "<td>3</td>")
	assert.Contains(t, body, "<td>Jane</td>")
	remote.AssertExpectations(t)
}

func TestSubmit_ValidationErrorShownInline(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(1), nil).Once()

	c.page("/")
	c.do(http.MethodPost, "/users/new", url.Values{})
	w := c.do(http.MethodPost, "/form", url.Values{"name": {""}, "email": {"a@b.c"}, "department": {"x"}})
	assertRedirect(t, w, "/?page=1")

	body := c.page("/")
	assert.Contains(t, body, "Name is required")
	assert.Contains(t, body, `value="a@b.c"`)
	remote.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestEditUser_Flow(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(3), nil).Once()
	in := domain.Input{Name: "First2 Changed", Email: "user2@example.com", Company: domain.Company{Name: "Dept2"}}
	remote.On("UpdateUser", mock.Anything, int64(2), in).
		Return(&domain.User{ID: 2, Name: in.Name, Email: in.Email, Company: in.Company}, nil).Once()

	c.page("/")
	assertRedirect(t, c.do(http.MethodPost, "/users/2/edit", url.Values{}), "/?page=1")

	body := c.page("/")
	assert.Contains(t, body, "Edit user 2")
	assert.Contains(t, body, `value="First2 Last2"`)

	c.do(http.MethodPost, "/form", url.Values{"name": {"First2 Changed"}})

	body = c.page("/")
	assert.Contains(t, body, "User updated successfully")
	assert.Contains(t, body, "<td>Changed</td>")
	remote.AssertExpectations(t)
}

func TestEditUser_UnknownID(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(1), nil).Once()
	c.page("/")

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/users/99/edit", url.Values{}).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/users/abc/delete", url.Values{}).Code)
}

func TestCancel_ClosesForm(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(1), nil).Once()

	c.page("/")
	c.do(http.MethodPost, "/users/1/edit", url.Values{})
	assertRedirect(t, c.do(http.MethodPost, "/form/cancel", url.Values{}), "/?page=1")

	assert.NotContains(t, c.page("/"), "Edit user 1")
}

func TestDeleteUser_ClampsPage(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(14), nil).Once()
	remote.On("DeleteUser", mock.Anything, int64(14)).Return(nil).Once()

	c.page("/?page=2")
	assertRedirect(t, c.do(http.MethodPost, "/users/14/delete", url.Values{}), "/?page=1")

	body := c.page("/")
	assert.Contains(t, body, "User deleted successfully")
	assert.Contains(t, body, "Page 1 of 1")
	assert.NotContains(t, body, "user14@example.com")
}

func TestDeleteUser_Failure(t *testing.T) {
	c, remote, _ := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(2), nil).Once()
	remote.On("DeleteUser", mock.Anything, int64(1)).
		Return(apperrors.NewNetworkError("delete user", http.StatusInternalServerError, errors.New("boom"))).Once()

	c.page("/")
	c.do(http.MethodPost, "/users/1/delete", url.Values{})

	body := c.page("/")
	assert.Contains(t, body, "Failed to delete user")
	assert.Contains(t, body, "user1@example.com")
}

func TestDismissNotice(t *testing.T) {
	c, remote, registry := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(1), nil).Once()
	remote.On("DeleteUser", mock.Anything, int64(1)).Return(nil).Once()

	c.page("/")
	c.do(http.MethodPost, "/users/1/delete", url.Values{})

	sess, ok := registry.Get(c.cookie.Value)
	require.True(t, ok)
	notices := sess.Notices.Active()
	require.Len(t, notices, 1)

	path := fmt.Sprintf("/notices/%d/dismiss", notices[0].ID)
	assertRedirect(t, c.do(http.MethodPost, path, url.Values{}), "/?page=1")
	assert.Empty(t, sess.Notices.Active())
}

func TestSession_ExpiredCookieStartsNewSession(t *testing.T) {
	c, remote, registry := setupConsole(t)
	remote.On("ListUsers", mock.Anything).Return(seedUsers(1), nil)

	c.page("/")
	first := c.cookie.Value

	clk := &fakeClock{t: time.Now().Add(2 * time.Hour)}
	registry.now = clk.now

	c.page("/")
	assert.NotEqual(t, first, c.cookie.Value)
	assert.Equal(t, 1, registry.Len())
	remote.AssertNumberOfCalls(t, "ListUsers", 2)
}

func TestHealth(t *testing.T) {
	c, _, _ := setupConsole(t)

	w := c.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "user-console", body["service"])
	assert.Nil(t, c.cookie, "health checks do not open sessions")
}
