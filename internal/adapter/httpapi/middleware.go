package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Verifier resolves a bearer token to a user ID. Token issuance and
// cryptographic verification belong to the auth collaborator; this
// service only consumes the mapping.
type Verifier interface {
	Verify(token string) (uuid.UUID, error)
}

// StaticVerifier maps fixed tokens to user IDs, used for local runs
// and tests
type StaticVerifier map[string]uuid.UUID

// Verify resolves the token or reports it as invalid
func (v StaticVerifier) Verify(token string) (uuid.UUID, error) {
	if userID, ok := v[token]; ok {
		return userID, nil
	}
	return uuid.Nil, errors.New("invalid token")
}

type contextKey string

const userIDKey contextKey = "userID"

// userID extracts the authenticated user from the request context
func userID(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(userIDKey).(uuid.UUID)
	return id
}

// Authenticate validates the Authorization bearer token and stores the
// resolved user ID on the request context
func Authenticate(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			id, err := verifier.Verify(token)
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Message: "Invalid Token"})
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per request with method, path, status
// and duration
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
