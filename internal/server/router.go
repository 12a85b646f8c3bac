// Package server assembles the HTTP routes and the middleware chain.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/httpx"
)

const readyTimeout = 500 * time.Millisecond

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config  config.Server
	Secret  string
	DB      Pinger
	Logger  *slog.Logger
	Auth    *auth.HTTPHandler
	Books   *book.HTTPHandler
	Authors *author.HTTPHandler
	// LoginLimiter throttles POST /login per client; nil disables it.
	LoginLimiter *httpx.RateLimitMiddleware
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	var login http.Handler = http.HandlerFunc(d.Auth.Login)
	if d.LoginLimiter != nil {
		login = d.LoginLimiter.Middleware(login)
	}
	router.Handle("POST /login", login)

	protected := httpx.AuthMiddleware(d.Secret)
	handle := func(pattern string, h http.HandlerFunc) {
		router.Handle(pattern, protected(h))
	}

	handle("GET /books", d.Books.List)
	handle("POST /books", d.Books.Create)
	handle("GET /books/{id}", d.Books.Get)
	handle("PUT /books/{id}", d.Books.Update)
	handle("DELETE /books/{id}", d.Books.Delete)

	handle("GET /authors", d.Authors.List)
	handle("POST /authors", d.Authors.Create)
	handle("GET /authors/{id}", d.Authors.Get)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware(d.Logger),
		httpx.AccessLogMiddleware(d.Logger),
		httpx.SecurityHeadersMiddleware(d.Config.EnableHSTS),
		httpx.CORSMiddleware(d.Config.AllowedOrigins),
		httpx.RequestSizeLimitMiddleware(d.Config.MaxBodyBytes),
	)
}

// New returns an http.Server with the timeouts used in production.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
