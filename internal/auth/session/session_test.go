package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blightstone/blightstone/internal/auth/domain"
	"github.com/blightstone/blightstone/internal/auth/service"

	"github.com/stretchr/testify/require"
)

var (
	testHashKey  = []byte("0123456789abcdef0123456789abcdef")
	testBlockKey = []byte("fedcba9876543210fedcba9876543210")
)

func TestMemoryBackend_RoundTrip(t *testing.T) {
	b := NewMemoryBackend()
	defer b.Close()
	ctx := context.Background()

	data := Data{UserID: "u1", Email: "u@example.com", AccessToken: "tok"}
	require.NoError(t, b.Save(ctx, "s1", data))

	got, err := b.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, data, got)

	require.NoError(t, b.Delete(ctx, "s1"))
	_, err = b.Get(ctx, "s1")
	require.ErrorIs(t, err, ErrNoSession)

	// Deleting again is fine.
	require.NoError(t, b.Delete(ctx, "s1"))
}

func TestManager_IssueReadDestroy(t *testing.T) {
	b := NewMemoryBackend()
	defer b.Close()
	m := NewManager(b, testHashKey, testBlockKey, false)

	w := httptest.NewRecorder()
	data := Data{UserID: "u1", AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	id, err := m.Issue(context.Background(), w, data)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	// Cookie value is the encoded ID, never the raw one.
	require.NotContains(t, cookies[0].Value, id)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])

	gotID, gotData, err := m.Read(r)
	require.NoError(t, err)
	require.Equal(t, id, gotID)
	require.Equal(t, data.UserID, gotData.UserID)

	w2 := httptest.NewRecorder()
	require.NoError(t, m.Destroy(context.Background(), w2, id))

	cleared := w2.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, -1, cleared[0].MaxAge)

	_, _, err = m.Read(r)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestManager_RejectsForgedCookie(t *testing.T) {
	b := NewMemoryBackend()
	defer b.Close()
	m := NewManager(b, testHashKey, testBlockKey, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})

	_, _, err := m.Read(r)
	require.ErrorIs(t, err, ErrNoSession)
}

type staticValidator struct {
	user domain.User
	err  error
}

func (v staticValidator) GetCurrentUser(context.Context, string) (domain.User, error) {
	return v.user, v.err
}

func TestRequireAuth(t *testing.T) {
	b := NewMemoryBackend()
	defer b.Close()
	m := NewManager(b, testHashKey, testBlockKey, false)

	user := domain.User{ID: "u1", Email: "u@example.com", Role: domain.RoleAdministrator}

	var seen domain.User
	handler := RequireAuth(m, staticValidator{user: user})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, err := m.Issue(context.Background(), w, Data{UserID: "u1", AccessToken: "tok"})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(w.Result().Cookies()[0])

		w2 := httptest.NewRecorder()
		handler.ServeHTTP(w2, r)
		require.Equal(t, http.StatusOK, w2.Code)
		require.Equal(t, user, seen)
	})

	t.Run("invalid token destroys session", func(t *testing.T) {
		failing := RequireAuth(m, staticValidator{err: service.ErrInvalidSession})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))

		w := httptest.NewRecorder()
		id, err := m.Issue(context.Background(), w, Data{UserID: "u1", AccessToken: "bad"})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(w.Result().Cookies()[0])

		w2 := httptest.NewRecorder()
		failing.ServeHTTP(w2, r)
		require.Equal(t, http.StatusUnauthorized, w2.Code)

		_, err = b.Get(context.Background(), id)
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("orphaned profile destroys session", func(t *testing.T) {
		failing := RequireAuth(m, staticValidator{err: service.ErrProfileNotFound})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))

		w := httptest.NewRecorder()
		id, err := m.Issue(context.Background(), w, Data{UserID: "u1", AccessToken: "tok"})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(w.Result().Cookies()[0])

		w2 := httptest.NewRecorder()
		failing.ServeHTTP(w2, r)
		require.Equal(t, http.StatusUnauthorized, w2.Code)

		_, err = b.Get(context.Background(), id)
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("store outage keeps session", func(t *testing.T) {
		flaky := RequireAuth(m, staticValidator{err: context.DeadlineExceeded})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))

		w := httptest.NewRecorder()
		id, err := m.Issue(context.Background(), w, Data{UserID: "u1", AccessToken: "tok"})
		require.NoError(t, err)

		cookie := w.Result().Cookies()[0]
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(cookie)

		w2 := httptest.NewRecorder()
		flaky.ServeHTTP(w2, r)
		require.Equal(t, http.StatusInternalServerError, w2.Code)

		// The session record survives the outage.
		_, err = b.Get(context.Background(), id)
		require.NoError(t, err)

		// Once the store answers again the same cookie works.
		r2 := httptest.NewRequest(http.MethodGet, "/", nil)
		r2.AddCookie(cookie)
		w3 := httptest.NewRecorder()
		handler.ServeHTTP(w3, r2)
		require.Equal(t, http.StatusOK, w3.Code)
	})
}
