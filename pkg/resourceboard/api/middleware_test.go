package api_test

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/opencurate/resource-board/pkg/resourceboard"
	"github.com/opencurate/resource-board/pkg/resourceboard/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSessionSecret = "test-session-secret"
	testSuperuserKey  = "super-secret-key"
)

func testAuthenticator() *api.Authenticator {
	sum := sha256.Sum256([]byte(testSuperuserKey))
	return api.NewAuthenticator([]byte(testSessionSecret), hex.EncodeToString(sum[:]))
}

func TestClassify(t *testing.T) {
	auth := testAuthenticator()
	userID := uuid.New()

	sessionToken, err := auth.SessionToken(userID, "member")
	require.NoError(t, err)

	t.Run("no credentials is anonymous", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/resources", nil)

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierAnonymous, principal.Tier)
		assert.Equal(t, uuid.Nil, principal.ID)
	})

	t.Run("session token in header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/resources", nil)
		r.Header.Set("Authorization", "Bearer "+sessionToken)

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierAuthenticated, principal.Tier)
		assert.Equal(t, userID, principal.ID)
		assert.Equal(t, "member", principal.Login)
	})

	t.Run("session token in cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/resources", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: sessionToken})

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierAuthenticated, principal.Tier)
		assert.Equal(t, userID, principal.ID)
	})

	t.Run("superuser key", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/resources", nil)
		r.Header.Set("Authorization", "Bearer "+testSuperuserKey)

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierSuperuser, principal.Tier)
	})

	t.Run("superuser key with session cookie carries identity", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/resources", nil)
		r.Header.Set("Authorization", "Bearer "+testSuperuserKey)
		r.AddCookie(&http.Cookie{Name: "session", Value: sessionToken})

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierSuperuser, principal.Tier)
		assert.Equal(t, userID, principal.ID)
		assert.Equal(t, "member", principal.Login)
	})

	t.Run("wrong superuser key is anonymous", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/resources", nil)
		r.Header.Set("Authorization", "Bearer not-the-key")

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierAnonymous, principal.Tier)
	})

	t.Run("token signed with another secret is anonymous", func(t *testing.T) {
		other := api.NewAuthenticator([]byte("some-other-secret"), "")
		forged, err := other.SessionToken(uuid.New(), "intruder")
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/resources", nil)
		r.Header.Set("Authorization", "Bearer "+forged)

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierAnonymous, principal.Tier)
	})

	t.Run("expired token is anonymous", func(t *testing.T) {
		ja := jwtauth.New("HS256", []byte(testSessionSecret), nil)
		_, expired, err := ja.Encode(map[string]interface{}{
			"sub":   uuid.New().String(),
			"login": "member",
			"exp":   time.Now().Add(-time.Hour),
		})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/resources", nil)
		r.Header.Set("Authorization", "Bearer "+expired)

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierAnonymous, principal.Tier)
	})

	t.Run("valid token with mangled subject is anonymous", func(t *testing.T) {
		ja := jwtauth.New("HS256", []byte(testSessionSecret), nil)
		_, mangled, err := ja.Encode(map[string]interface{}{
			"sub":   "not-a-uuid",
			"login": "member",
		})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/resources", nil)
		r.Header.Set("Authorization", "Bearer "+mangled)

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierAnonymous, principal.Tier)
	})

	t.Run("garbage bearer value is anonymous", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/resources", nil)
		r.Header.Set("Authorization", "Bearer !!!not-a-jwt!!!")

		principal := auth.Classify(r)
		assert.Equal(t, resourceboard.TierAnonymous, principal.Tier)
	})
}

func TestMiddlewareStoresPrincipal(t *testing.T) {
	auth := testAuthenticator()
	userID := uuid.New()
	token, err := auth.SessionToken(userID, "member")
	require.NoError(t, err)

	var seen resourceboard.Principal
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = api.PrincipalFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/resources", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, resourceboard.TierAuthenticated, seen.Tier)
	assert.Equal(t, userID, seen.ID)
}

func TestPrincipalFromContextWithoutMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/resources", nil)

	principal := api.PrincipalFromContext(r.Context())
	assert.Equal(t, resourceboard.TierAnonymous, principal.Tier)
}
