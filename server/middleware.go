package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	accountKey   contextKey = "account"
)

// MockUserID is the user every request acts as when mock auth is enabled.
var MockUserID = uuid.MustParse("3e4097ef-3853-4829-9b56-67791b78a798")

// MockToken is the bearer token accepted by mock auth.
const MockToken = "mockToken"

// DefaultUserHeader carries the user id set by the authenticating proxy.
const DefaultUserHeader = "X-User-ID"

// RequestID adds a unique request ID to each request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()[:8]
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFrom returns the request ID set by RequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Logger logs request method, path, status, and duration.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info("request",
				"request_id", RequestIDFrom(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// Recovery catches panics and returns a 500.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered", "error", err, "path", r.URL.Path)
					Error(w, http.StatusInternalServerError, errors.New("internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccountStore resolves authenticated users to accounts.
type AccountStore interface {
	EnsureAccount(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// AuthConfig selects how requests are authenticated.
type AuthConfig struct {
	Mock   bool   // accept "Bearer " + MockToken as MockUserID.
	Header string // empty → DefaultUserHeader
}

// Authenticate resolves the caller's account and stores it in the request
// context. Without mock auth the user id is read from a header set by the
// authenticating proxy in front of the service.
func Authenticate(cfg AuthConfig, accounts AccountStore, logger *slog.Logger) func(http.Handler) http.Handler {
	header := cfg.Header
	if header == "" {
		header = DefaultUserHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := userID(r, cfg.Mock, header)
			if !ok {
				Error(w, http.StatusUnauthorized, errors.New("unauthorized"))
				return
			}
			account, err := accounts.EnsureAccount(r.Context(), user)
			if err != nil {
				InternalError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, account)))
		})
	}
}

func userID(r *http.Request, mock bool, header string) (uuid.UUID, bool) {
	if mock {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		return MockUserID, ok && token == MockToken
	}
	id, err := uuid.Parse(r.Header.Get(header))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// AccountFrom returns the account set by Authenticate.
func AccountFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(accountKey).(uuid.UUID)
	return id
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
