package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"spendlog/internal/shared/config"
	"spendlog/internal/shared/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Handler      http.Handler
	Addr         string
	TLSEnabled   bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
	AllowedHosts []string
}

// NewServerConfigFromConfig creates ServerConfig from application config.
func NewServerConfigFromConfig(handler http.Handler, cfg *config.Config) ServerConfig {
	return ServerConfig{
		Handler:      handler,
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		TLSEnabled:   cfg.TLS.Enabled,
		CertPath:     cfg.TLS.CertPath,
		KeyPath:      cfg.TLS.KeyPath,
		RedirectHTTP: cfg.TLS.RedirectHTTP,
		AllowedHosts: cfg.Server.AllowedHosts,
	}
}

// Servers is the main listener plus the optional :80 redirect listener.
type Servers struct {
	main     *http.Server
	redirect *http.Server
	// errc receives the first fatal listener error.
	errc chan error
}

// StartServers starts the configured listeners in the background.
func StartServers(scfg ServerConfig) *Servers {
	s := &Servers{
		main: &http.Server{
			Addr:        scfg.Addr,
			Handler:     scfg.Handler,
			ReadTimeout: 15 * time.Second,
			// PDF exports of a full history can take a while to render.
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		errc: make(chan error, 1),
	}

	if scfg.TLSEnabled && scfg.RedirectHTTP {
		s.redirect = newRedirectServer(scfg.AllowedHosts)
		go func() {
			log.Println("HTTP redirect server starting on :80")
			if err := s.redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP redirect server error: %v", err)
			}
		}()
	}

	go func() {
		var err error
		if scfg.TLSEnabled {
			log.Printf("HTTPS server starting on %s", scfg.Addr)
			err = s.main.ListenAndServeTLS(scfg.CertPath, scfg.KeyPath)
		} else {
			log.Printf("HTTP server starting on %s", scfg.Addr)
			err = s.main.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errc <- err
		}
	}()

	return s
}

// Err reports a listener that failed to start or stopped unexpectedly.
func (s *Servers) Err() <-chan error {
	return s.errc
}

// Shutdown stops the redirect listener and then the main one, letting
// in-flight requests finish within timeout.
func (s *Servers) Shutdown(timeout time.Duration) {
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.redirect != nil {
		if err := s.redirect.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down HTTP redirect server: %v", err)
		}
	}
	if err := s.main.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down main server: %v", err)
	}

	log.Println("Server stopped")
}

// newRedirectServer answers plain HTTP on :80 with a redirect to HTTPS for
// allowed hosts.
func newRedirectServer(allowedHosts []string) *http.Server {
	return &http.Server{
		Addr:         ":80",
		Handler:      middleware.RequireHTTPS(allowedHosts)(http.NotFoundHandler()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
