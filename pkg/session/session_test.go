package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Options{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Now:    func() time.Time { return clock },
		Users: []User{
			{ID: "usr-1", Email: "Wanjiru@craftmarket.co.ke", Password: "kikapu", Roles: []string{"admin"}, Locale: "sw"},
		},
	})
	require.NoError(t, err)
	return m
}

func TestNewManagerValidatesOptions(t *testing.T) {
	_, err := NewManager(Options{})
	require.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewManager(Options{Secret: []byte("s"), Users: []User{{ID: "a", Email: "a@x"}, {ID: "b", Email: "A@x"}}})
	require.Error(t, err)
}

func TestLoginAndValidate(t *testing.T) {
	m := newManager(t)
	token, sess, err := m.Login(context.Background(), "wanjiru@craftmarket.co.ke", "kikapu")
	require.NoError(t, err)
	assert.Equal(t, clock.Add(time.Hour), token.ExpiresAt)
	assert.NotEmpty(t, sess.TokenID)

	got, err := m.Validate(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", got.UserID)
	assert.Equal(t, []string{"admin"}, got.Roles)
	assert.Equal(t, sess.TokenID, got.TokenID)

	viewer := got.Viewer()
	assert.Equal(t, "usr-1", viewer.UserID)
	assert.Equal(t, "sw", viewer.Locale)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	m := newManager(t)
	_, _, err := m.Login(context.Background(), "wanjiru@craftmarket.co.ke", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = m.Login(context.Background(), "nobody@craftmarket.co.ke", "kikapu")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateRejectsTamperedAndExpired(t *testing.T) {
	m := newManager(t)
	token, _, err := m.Login(context.Background(), "wanjiru@craftmarket.co.ke", "kikapu")
	require.NoError(t, err)

	_, err = m.Validate(token.Value + "x")
	require.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewManager(Options{Secret: []byte("another"), Now: m.now})
	require.NoError(t, err)
	_, err = other.Validate(token.Value)
	require.ErrorIs(t, err, ErrInvalidToken)

	later := clock.Add(2 * time.Hour)
	m.now = func() time.Time { return later }
	_, err = m.Validate(token.Value)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Validate("")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestLogoutRevokes(t *testing.T) {
	m := newManager(t)
	token, _, err := m.Login(context.Background(), "wanjiru@craftmarket.co.ke", "kikapu")
	require.NoError(t, err)

	_, err = m.Logout(token.Value)
	require.NoError(t, err)
	_, err = m.Validate(token.Value)
	require.ErrorIs(t, err, ErrRevoked)
	_, err = m.Logout(token.Value)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer   abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("Bearer"))
}

func TestGuard(t *testing.T) {
	m := newManager(t)
	token, _, err := m.Login(context.Background(), "wanjiru@craftmarket.co.ke", "kikapu")
	require.NoError(t, err)

	var seen string
	handler := m.Guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ContextViewer(r).UserID
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/lists", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, seen)

	req := httptest.NewRequest(http.MethodGet, "/admin/lists", nil)
	req.Header.Set("Authorization", "Bearer "+token.Value)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "usr-1", seen)

	req = httptest.NewRequest(http.MethodGet, "/admin/lists", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token.Value})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestContextViewerFallsBackToHeaderLocale(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "EN-GB;q=0.9, sw")
	ctx := WithSession(req.Context(), Session{UserID: "usr-2"})
	viewer := ContextViewer(req.WithContext(ctx))
	assert.Equal(t, "en-gb", viewer.Locale)

	assert.Empty(t, ContextViewer(req).UserID)
}
