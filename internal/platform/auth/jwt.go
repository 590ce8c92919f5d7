package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

type ctxKeyUserID struct{}
type ctxKeyRole struct{}

func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyUserID{}).(string)
	return v, ok
}

// WithUserID injects user_id into context. Useful for testing.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID{}, uid)
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyRole{}).(string)
	return v, ok
}

type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

type JWTVerifier struct {
	Secret []byte
}

func (v JWTVerifier) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

// authenticate turns a request's bearer token into a signed-in session.
func authenticate(verifier JWTVerifier, r *http.Request) (Session, bool) {
	tok, ok := bearerToken(r)
	if !ok {
		return Session{}, false
	}
	claims, err := verifier.Parse(tok)
	if err != nil {
		return Session{}, false
	}
	s, err := Anonymous().SignIn(tok, claims)
	if err != nil {
		return Session{}, false
	}
	return s, true
}

func withIdentity(ctx context.Context, s Session) context.Context {
	ctx = WithSession(ctx, s)
	ctx = context.WithValue(ctx, ctxKeyUserID{}, s.UserID)
	if strings.TrimSpace(s.Role) != "" {
		ctx = context.WithValue(ctx, ctxKeyRole{}, s.Role)
	}
	return ctx
}

// RequireUser middleware validates Bearer token and injects user_id into context.
func RequireUser(verifier JWTVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := authenticate(verifier, r)
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), s)))
		})
	}
}

// OptionalUser attaches a signed-in session when a valid bearer token is present
// and an anonymous one otherwise. It never rejects the request.
func OptionalUser(verifier JWTVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := authenticate(verifier, r); ok {
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), s)))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), Anonymous())))
		})
	}
}
