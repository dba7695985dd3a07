package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = errors.New("invalid token")

// Messages returned with 401 responses.
const (
	NoTokenMessage      = "No token"
	InvalidTokenMessage = "Invalid token"
)

const clockLeeway = time.Minute

// Claims are the custom claims the dashboard reads from a bearer token.
type Claims struct {
	ID string `json:"id"`
}

// TokenVerifier checks HS256 bearer tokens issued by the auth service.
type TokenVerifier struct {
	now    func() time.Time
	secret []byte
}

// NewTokenVerifier creates a verifier for secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), now: time.Now}
}

// Verify returns the user id carried by raw.
func (v *TokenVerifier) Verify(raw string) (string, error) {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var std jwt.Claims
	var custom Claims
	if err := tok.Claims(v.secret, &std, &custom); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if err := std.ValidateWithLeeway(jwt.Expected{Time: v.now()}, clockLeeway); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID := strings.TrimSpace(custom.ID)
	if userID == "" {
		userID = strings.TrimSpace(std.Subject)
	}
	if userID == "" {
		return "", fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	return userID, nil
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type userKey struct{}

// WithUserID stores the authenticated user on ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID returns the authenticated user, or "" outside Auth.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

// Auth rejects requests without a valid bearer token.
func Auth(verifier *TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, NoTokenMessage)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, InvalidTokenMessage)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
