// Package httpserver exposes the domain services over HTTP.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mwalczyk/socialfeed/internal/auth"
	"github.com/mwalczyk/socialfeed/internal/config"
	"github.com/mwalczyk/socialfeed/internal/domain"
)

// sessionCookie is the cookie carrying the session token.
const sessionCookie = "token"

// Server is the HTTP server for the social-feed API.
type Server struct {
	cfg        *config.Config
	feed       *domain.FeedService
	accounts   *domain.AccountService
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a new HTTP server over the given services.
func NewServer(cfg *config.Config, feed *domain.FeedService, accounts *domain.AccountService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		feed:     feed,
		accounts: accounts,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /signin", s.handleSignin)
	mux.HandleFunc("GET /signout", s.handleSignout)
	mux.HandleFunc("GET /user", s.handleGetUser)
	mux.HandleFunc("PATCH /updateUser", s.handleUpdateUser)
	mux.HandleFunc("GET /image", s.handleGetImage)
	mux.HandleFunc("GET /posts", s.handleGetFeed)
	mux.HandleFunc("POST /post", s.handleCreatePost)
	mux.HandleFunc("DELETE /post", s.handleDeletePost)
	mux.HandleFunc("PATCH /updatePost", s.handleUpdatePost)
	mux.HandleFunc("POST /comment", s.handleAddComment)
	mux.HandleFunc("POST /like", s.handleAddLike)
	mux.HandleFunc("DELETE /unlike", s.handleRemoveLike)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := withLogging(logger, mux)
	if cfg.FrontendOrigin != "" {
		handler = withCORS(cfg.FrontendOrigin, handler)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionToken returns the request's session token, or "" when the cookie
// is absent.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		HttpOnly: true,
		MaxAge:   int(auth.SessionLifetime.Seconds()),
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		HttpOnly: true,
		MaxAge:   -1,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
}

// writeDomainError maps a domain failure to an HTTP response. Store-level
// detail is never shown to the caller.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoToken):
		writeError(w, http.StatusUnauthorized, "No token provided")
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrNotOwner):
		writeError(w, http.StatusUnauthorized, "Invalid token was provided")
	case errors.Is(err, domain.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, "This email is already registered")
	case errors.Is(err, domain.ErrAlreadyLiked):
		writeError(w, http.StatusConflict, "You have already liked this post")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

// withCORS allows the configured frontend origin to call the API with
// credentials (the session cookie).
func withCORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
