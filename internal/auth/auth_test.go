package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/auth"
	"github.com/contentforge/contentforge/internal/user"
	"github.com/contentforge/contentforge/pkg/cookie"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ByID(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func newIssuer(t *testing.T, users auth.UserResolver, ttl time.Duration) *auth.Issuer {
	t.Helper()

	issuer, err := auth.NewIssuer(
		auth.Config{Secret: "test-signing-key-long-enough-000", TokenTTL: ttl},
		cookie.New(cookie.WithSameSite(http.SameSiteStrictMode)),
		users,
	)
	require.NoError(t, err)
	return issuer
}

func login(t *testing.T, issuer *auth.Issuer, u *user.User) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, issuer.Issue(rec, u))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestIssue_CookieAttributes(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, new(mockResolver), 72*time.Hour)
	c := login(t, issuer, &user.User{ID: bson.NewObjectID()})

	assert.Equal(t, auth.CookieName, c.Name)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	// Cookie lifetime matches the token validity.
	assert.Equal(t, int((72 * time.Hour).Seconds()), c.MaxAge)
}

func TestVerify_ResolvesUserWithoutPassword(t *testing.T) {
	t.Parallel()

	id := bson.NewObjectID()
	resolver := new(mockResolver)
	resolver.On("ByID", mock.Anything, id).Return(&user.User{ID: id, Email: "jane@example.com", Password: "hash"}, nil)

	issuer := newIssuer(t, resolver, 72*time.Hour)
	c := login(t, issuer, &user.User{ID: id})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)

	u, err := issuer.Verify(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Empty(t, u.Password)
}

func TestVerify_MissingCookie(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, new(mockResolver), 72*time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := issuer.Verify(context.Background(), r)
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestVerify_ExpiredToken(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, new(mockResolver), -time.Minute)
	c := login(t, issuer, &user.User{ID: bson.NewObjectID()})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)

	_, err := issuer.Verify(context.Background(), r)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerify_GarbageToken(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, new(mockResolver), 72*time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "not-a-token"})

	_, err := issuer.Verify(context.Background(), r)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerify_UnknownUser(t *testing.T) {
	t.Parallel()

	id := bson.NewObjectID()
	resolver := new(mockResolver)
	resolver.On("ByID", mock.Anything, id).Return(nil, user.ErrNotFound)

	issuer := newIssuer(t, resolver, 72*time.Hour)
	c := login(t, issuer, &user.User{ID: id})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)

	_, err := issuer.Verify(context.Background(), r)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	id := bson.NewObjectID()
	resolver := new(mockResolver)
	resolver.On("ByID", mock.Anything, id).Return(&user.User{ID: id}, nil)

	issuer := newIssuer(t, resolver, 72*time.Hour)

	var captured *user.User
	handler := issuer.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No cookie: 401 with the no-token message.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no token")

	// Valid cookie: handler runs with the user attached.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(login(t, issuer, &user.User{ID: id}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, id, captured.ID)
}

func TestCheckAndRevoke(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t, new(mockResolver), 72*time.Hour)
	c := login(t, issuer, &user.User{ID: bson.NewObjectID()})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	assert.True(t, issuer.Check(r))

	assert.False(t, issuer.Check(httptest.NewRequest(http.MethodGet, "/", nil)))

	rec := httptest.NewRecorder()
	issuer.Revoke(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
