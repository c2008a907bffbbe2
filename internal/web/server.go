package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sealbox/sealbox/internal/auth"
	"github.com/sealbox/sealbox/internal/ops"
)

// NewServer creates and configures the HTTP server for the Sealbox API.
func NewServer(svc *ops.Service, admin *auth.Admin, version, bind string, port int) *http.Server {
	h := &Handlers{
		svc:     svc,
		admin:   admin,
		version: version,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("POST /capsules", h.HandleCreate)
	mux.HandleFunc("GET /capsules/{code}", h.HandleGet)
	mux.HandleFunc("GET /capsules/{code}/status", h.HandleStatus)
	mux.HandleFunc("GET /capsules/{code}/render", h.HandleRender)
	mux.HandleFunc("POST /admin/login", h.HandleLogin)
	mux.HandleFunc("GET /admin/capsules", h.HandleList)
	mux.HandleFunc("DELETE /admin/capsules/{code}", h.HandleDelete)
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /about", h.HandleAbout)

	// Wrap with security headers
	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("Sealbox API running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
