// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the rule converter over HTTP.
//
// Routes:
//
//	POST    /api/convert        Xiandan JSON in, Nyanpass NDJSON out
//	GET     / and /index.html   conversion form
//	OPTIONS any path            CORS preflight
//
// Everything else is a plain-text 404.
package server

import (
	"context"
	_ "embed"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/forward-convert/internal/convert"
	"github.com/pdiddy/forward-convert/pkg/types"
)

const (
	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"

	ctxRequestID = "request_id"

	contentTypeNDJSON = "text/plain; charset=UTF-8"
	contentTypeHTML   = "text/html; charset=UTF-8"

	convertPath = "/api/convert"

	msgUnreadableBody   = "无法读取请求内容"
	msgMethodNotAllowed = "Method Not Allowed"
)

//go:embed index.html
var indexHTML []byte

// Server serves the conversion endpoint and the form page.
type Server struct {
	cfg       types.ServerConfig
	converter convert.Converter
	logger    *slog.Logger
}

// New creates a Server. A nil converter means convert.RuleConverter and a
// nil logger means slog.Default().
func New(cfg types.ServerConfig, c convert.Converter, logger *slog.Logger) *Server {
	if c == nil {
		c = convert.RuleConverter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, converter: c, logger: logger}
}

// Routes builds the gin engine.
func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.HandleMethodNotAllowed = false

	// Global middleware also wraps the NoRoute handler, so preflight works
	// for every path.
	r.Use(requestID(), s.accessLog(), gin.Recovery(), preflight())

	r.Any(convertPath, s.handleConvert)
	r.Any("/", s.handleIndex)
	r.Any("/index.html", s.handleIndex)
	r.NoRoute(s.handleNoRoute)
	return r
}

// Run listens on cfg.Listen until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("forward-convert listening", "address", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down", "timeout", timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleConvert(c *gin.Context) {
	setCORS(c)
	if c.Request.Method != http.MethodPost {
		RespondError(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	body := c.Request.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, s.cfg.MaxBodyBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		s.logger.Warn("reading request body", "error", err, "request_id", c.GetString(ctxRequestID))
		RespondError(c, http.StatusBadRequest, msgUnreadableBody)
		return
	}

	out, err := s.converter.Convert(raw)
	if err != nil {
		s.logger.Info("conversion rejected", "error", err, "request_id", c.GetString(ctxRequestID))
		RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.Data(http.StatusOK, contentTypeNDJSON, []byte(out))
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, contentTypeHTML, indexHTML)
}

// handleNoRoute also receives known paths requested with methods that
// Any does not register (PROPFIND, PURGE, ...).
func (s *Server) handleNoRoute(c *gin.Context) {
	switch c.Request.URL.Path {
	case convertPath:
		s.handleConvert(c)
	case "/", "/index.html":
		s.handleIndex(c)
	default:
		c.String(http.StatusNotFound, "Not Found")
	}
}

// RespondError writes {"error": msg} without HTML escaping so the form can
// show the message as-is.
func RespondError(c *gin.Context, status int, msg string) {
	c.PureJSON(status, gin.H{"error": msg})
}
