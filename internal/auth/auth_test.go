package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"usermgmt/internal/cache"
	apperrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, h.Compare("password123", hash))
	assert.False(t, h.Compare("wrong", hash))
	assert.False(t, h.Compare("password123", "not-a-hash"))

	other, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")

	_, err = h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, err := svc.Issue(42, "john@example.com", model.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, time.Hour.Seconds(), svc.Remaining(claims).Seconds(), 5)
}

func TestJWTService_Verify_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret", time.Minute)
	valid, err := svc.Issue(1, "a@example.com", model.RoleUser)
	require.NoError(t, err)

	otherSecret, err := NewJWTService("other-secret", time.Minute).Issue(1, "a@example.com", model.RoleUser)
	require.NoError(t, err)

	expiredSvc := NewJWTService("test-secret", time.Minute)
	expiredSvc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredSvc.Issue(1, "a@example.com", model.RoleUser)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.token"},
		{"wrong secret", otherSecret},
		{"expired", expired},
		{"none algorithm", none},
		{"tampered payload", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Verify(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	}
}

func TestJWTService_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTokenExpiry, NewJWTService("s", 0).TTL())
	assert.Equal(t, time.Duration(0), NewJWTService("s", 0).Remaining(nil))
}

func TestTokenStore_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewTokenStore(cache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()})))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, _ = store.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-2", 0))
	revoked, _ = store.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)
}

func TestTokenStore_NilCacheNeverRevokes(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(nil)

	require.NoError(t, store.Revoke(ctx, "jti", time.Minute))
	revoked, err := store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestCookieManager(t *testing.T) {
	e := echo.New()
	m := NewCookieManager("token", true, 15*time.Minute)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	m.Set(c, "abc")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 900, cookies[0].MaxAge)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	m.Clear(c)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "xyz"})
	c = e.NewContext(req, httptest.NewRecorder())
	v, ok := m.Read(c)
	assert.True(t, ok)
	assert.Equal(t, "xyz", v)

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok = m.Read(c)
	assert.False(t, ok)
}
