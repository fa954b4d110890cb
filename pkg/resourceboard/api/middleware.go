package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/opencurate/resource-board/pkg/resourceboard"
)

// Context keys for middleware
type contextKey string

const principalKey contextKey = "principal"

// Authenticator classifies every request into an access tier before it
// reaches a handler. Classification never rejects a request: anything that
// does not verify cleanly is treated as anonymous, and the service decides
// what an anonymous caller may do.
type Authenticator struct {
	sessionAuth        *jwtauth.JWTAuth
	superuserKeySHA256 string
}

// NewAuthenticator creates an authenticator. Session tokens are HS256 JWTs
// signed with sessionSecret; the superuser key is matched against its
// SHA-256 hex digest so the key itself never appears in configuration.
func NewAuthenticator(sessionSecret []byte, superuserKeySHA256 string) *Authenticator {
	return &Authenticator{
		sessionAuth:        jwtauth.New("HS256", sessionSecret, nil),
		superuserKeySHA256: strings.ToLower(superuserKeySHA256),
	}
}

// Middleware stores the classified principal in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := a.Classify(r)
		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Classify determines the caller's access tier. The superuser key and the
// session token are structurally different credentials, so a bearer value
// is checked as a key first and as a session token second; a credential
// that fails both checks classifies as anonymous.
func (a *Authenticator) Classify(r *http.Request) resourceboard.Principal {
	if a.isSuperuserKey(jwtauth.TokenFromHeader(r)) {
		principal := resourceboard.Principal{Tier: resourceboard.TierSuperuser}
		// A superuser may carry a session cookie alongside the key;
		// it only fills in identity, never the tier.
		if session, ok := a.verifySession(r, sessionCookieToken); ok {
			principal.ID = session.ID
			principal.Login = session.Login
		}
		return principal
	}

	if session, ok := a.verifySession(r, jwtauth.TokenFromHeader, sessionCookieToken); ok {
		session.Tier = resourceboard.TierAuthenticated
		return session
	}

	return resourceboard.Anonymous()
}

func (a *Authenticator) isSuperuserKey(bearer string) bool {
	if bearer == "" || a.superuserKeySHA256 == "" {
		return false
	}
	sum := sha256.Sum256([]byte(bearer))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(a.superuserKeySHA256)) == 1
}

// verifySession verifies a session JWT and extracts the caller identity.
// The subject must be a uuid; a token that verifies but carries a mangled
// subject is treated like no token at all.
func (a *Authenticator) verifySession(r *http.Request, findTokenFns ...func(r *http.Request) string) (resourceboard.Principal, bool) {
	token, err := jwtauth.VerifyRequest(a.sessionAuth, r, findTokenFns...)
	if err != nil || token == nil {
		return resourceboard.Principal{}, false
	}

	id, err := uuid.Parse(token.Subject())
	if err != nil {
		return resourceboard.Principal{}, false
	}

	principal := resourceboard.Principal{ID: id}
	if login, ok := token.Get("login"); ok {
		principal.Login, _ = login.(string)
	}
	return principal, true
}

// SessionToken issues a session JWT for the given user. Login flows live
// in a separate identity service; this is used by dev tooling and tests.
func (a *Authenticator) SessionToken(id uuid.UUID, login string) (string, error) {
	_, tokenString, err := a.sessionAuth.Encode(map[string]interface{}{
		"sub":   id.String(),
		"login": login,
	})
	return tokenString, err
}

// sessionCookieToken extracts a session token from the session cookie.
func sessionCookieToken(r *http.Request) string {
	cookie, err := r.Cookie("session")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// PrincipalFromContext returns the principal stored by the middleware.
// Handlers reached without the middleware see an anonymous principal.
func PrincipalFromContext(ctx context.Context) resourceboard.Principal {
	if principal, ok := ctx.Value(principalKey).(resourceboard.Principal); ok {
		return principal
	}
	return resourceboard.Anonymous()
}
