// Package server exposes the stamping service over HTTP. Each request is
// an independent synchronous unit working against its own uuid-keyed
// artifact paths; the only shared state is the storage root itself.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aditus-hr/pdffield/internal/config"
	"github.com/aditus-hr/pdffield/internal/pdf"
	"github.com/aditus-hr/pdffield/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end of the stamping service
type Server struct {
	config  *config.Config
	service *pdf.Service
	store   *storage.Store
}

// NewServer creates an HTTP server around a stamping service and an
// artifact store.
func NewServer(cfg *config.Config, service *pdf.Service, store *storage.Store) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	return &Server{
		config:  cfg,
		service: service,
		store:   store,
	}, nil
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /process-single-pdf", s.handleProcessSingle)
	mux.HandleFunc("POST /process-multiple-pdfs", s.handleProcessMultiple)
	mux.HandleFunc("GET /download/{id}", s.handleDownload)
	mux.HandleFunc("GET /download-zip/{id}", s.handleDownloadZip)
	mux.HandleFunc("DELETE /cleanup/{id}", s.handleCleanup)
	mux.HandleFunc("GET /config/default", s.handleDefaultConfig)

	return mux
}

// Run starts the HTTP server and blocks until the context is canceled or
// the listener fails. Leftover artifacts from a previous run are swept
// before serving.
func (s *Server) Run(ctx context.Context) error {
	s.store.Sweep()

	httpServer := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", s.config.Address())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	}
}
