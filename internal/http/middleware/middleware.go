// Package middleware holds the request wrappers installed on the API router.
package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/http/respond"
	"imagemarket/internal/security"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging logs one line per request. Health checks are skipped.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

// Recover turns a panic into a 500 JSON response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf("panic recovered method=%s path=%s panic=%v stack=%s",
					r.Method, r.URL.Path, recovered, strings.TrimSpace(string(debug.Stack())))
				respond.JSON(w, http.StatusInternalServerError, map[string]any{
					"success": false,
					"message": "Internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

const (
	corsMethods = "GET,DELETE,PATCH,POST,PUT,OPTIONS"
	corsHeaders = "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version, Authorization"
)

// CORS allows the listed origins ("*" allows any) and answers preflight
// requests itself.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || slices.Contains(origins, origin)) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireBearer rejects requests without an acceptable Authorization header
// and stores the caller's identity in the request context. An unverified
// identity is replaced by the login session's user when sessions is set.
func RequireBearer(auth *security.Authenticator, sessions *security.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, apperrors.ErrUnauthorized, "Unauthorized")
				return
			}
			if !id.Verified && sessions != nil {
				if userID, email, ok := sessions.Load(r); ok {
					id.UserID, id.Email = userID, email
				}
			}
			next.ServeHTTP(w, r.WithContext(security.WithIdentity(r.Context(), id)))
		})
	}
}
