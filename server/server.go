// server/server.go
// Package server runs the HTTP(S) listener: plain HTTP, HTTPS with files
// on disk, or HTTPS with Let's Encrypt certificates (http-01). It drains
// in-flight requests when its context is canceled.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/acme/autocert"

	"github.com/dalemusser/formrelay/config"
)

// WithShutdownSignals returns a context canceled on SIGINT or SIGTERM.
// The cancel func also stops signal delivery.
func WithShutdownSignals(parent context.Context, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			if logger != nil {
				logger.Info("shutdown signal received", zap.Stringer("signal", sig))
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// ListenAndServe serves handler until ctx is canceled or a listener fails.
// On cancellation it waits up to cfg.HTTP.ShutdownTimeout for in-flight
// requests. Routes are the caller's business.
func ListenAndServe(ctx context.Context, cfg *config.Config, handler http.Handler, logger *zap.Logger) error {
	if cfg == nil {
		return errors.New("server: cfg is nil")
	}
	if handler == nil {
		return errors.New("server: handler is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := newHTTPServer(cfg, handler, logger)

	var (
		ln  net.Listener
		aux *http.Server
		err error
	)
	switch {
	case !cfg.HTTP.UseHTTPS:
		ln, err = net.Listen("tcp", ":"+strconv.Itoa(cfg.HTTP.HTTPPort))
		if err != nil {
			return fmt.Errorf("listen http: %w", err)
		}
		logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))

	case cfg.TLS.UseLetsEncrypt:
		m := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.TLS.Domain),
			Cache:      autocert.DirCache(cfg.TLS.LetsEncryptCacheDir),
			Email:      cfg.TLS.LetsEncryptEmail,
		}
		// :80 answers the http-01 challenge and redirects everything else.
		aux = newHTTPServer(cfg, m.HTTPHandler(RedirectToHTTPS()), logger)
		aux.Addr = ":80"

		ln, err = listenTLS(cfg, &tls.Config{MinVersion: tls.VersionTLS12, GetCertificate: m.GetCertificate})
		if err != nil {
			return err
		}
		logger.Info("HTTPS server (Let's Encrypt) listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("domain", cfg.TLS.Domain))

	default:
		if err := checkKeyFiles(cfg.TLS.CertFile, cfg.TLS.KeyFile); err != nil {
			var perm *permissionError
			if !errors.As(err, &perm) || cfg.Env == "prod" {
				return err
			}
			logger.Warn("TLS key file is readable by others", zap.Error(err))
		}
		cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return fmt.Errorf("load TLS cert/key: %w", err)
		}
		aux = newHTTPServer(cfg, RedirectToHTTPS(), logger)
		aux.Addr = ":80"

		ln, err = listenTLS(cfg, &tls.Config{MinVersion: tls.VersionTLS12, Certificates: []tls.Certificate{cert}})
		if err != nil {
			return err
		}
		logger.Info("HTTPS server (manual TLS) listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("cert_file", cfg.TLS.CertFile))
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	// A nil channel never fires, which disables the case in HTTP-only mode.
	var auxErr chan error
	if aux != nil {
		auxErr = make(chan error, 1)
		go func() { auxErr <- aux.ListenAndServe() }()
		logger.Info("redirect server listening", zap.String("addr", aux.Addr))
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if aux != nil {
			_ = aux.Shutdown(shutdownCtx)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil

	case err := <-serveErr:
		if aux != nil {
			_ = aux.Close()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("primary server: %w", err)

	case err := <-auxErr:
		_ = srv.Close()
		return fmt.Errorf("redirect server: %w", err)
	}
}

func newHTTPServer(cfg *config.Config, h http.Handler, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}
	if stdlog, err := zap.NewStdLogAt(logger, zapcore.WarnLevel); err == nil {
		srv.ErrorLog = stdlog
	}
	return srv
}

func listenTLS(cfg *config.Config, tlsCfg *tls.Config) (net.Listener, error) {
	addr := ":" + strconv.Itoa(cfg.HTTP.HTTPSPort)
	base, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen https %s: %w", addr, err)
	}
	return tls.NewListener(base, tlsCfg), nil
}

// RedirectToHTTPS sends every request to the same host and path over
// HTTPS. Hosts carrying control characters or a scheme get a 400.
func RedirectToHTTPS() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uri := r.URL.RequestURI()
		if !validHost(r.Host) || hasControl(uri) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "https://"+r.Host+uri, http.StatusMovedPermanently)
	})
}

func hasControl(s string) bool {
	return strings.IndexFunc(s, func(c rune) bool { return c < 0x20 || c == 0x7f }) >= 0
}

func validHost(host string) bool {
	if host == "" || hasControl(host) || strings.ContainsAny(host, "/ \\@") {
		return false
	}
	name := host
	if h, port, err := net.SplitHostPort(host); err == nil {
		p, perr := strconv.Atoi(port)
		if perr != nil || p <= 0 || p > 65535 {
			return false
		}
		name = h
	}
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "[") {
		inner := strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
		if i := strings.IndexByte(inner, '%'); i >= 0 {
			inner = inner[:i]
		}
		return net.ParseIP(inner) != nil
	}
	return true
}

type permissionError struct {
	path string
	mode os.FileMode
}

func (e *permissionError) Error() string {
	return fmt.Sprintf("TLS key file %s has permissions %o (recommended: 0600)", e.path, e.mode)
}

// checkKeyFiles fails when either file is missing or a directory. A key
// readable by group or others yields a *permissionError.
func checkKeyFiles(certFile, keyFile string) error {
	for _, p := range []string{certFile, keyFile} {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("TLS file %s: %w", p, err)
		}
		if info.IsDir() {
			return fmt.Errorf("TLS file %s is a directory", p)
		}
	}
	if runtime.GOOS == "windows" {
		return nil
	}
	info, _ := os.Stat(keyFile)
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return &permissionError{path: keyFile, mode: perm}
	}
	return nil
}
