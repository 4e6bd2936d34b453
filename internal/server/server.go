// Package server exposes the conversion pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"emailcss/internal/config"
	"emailcss/pkg/inliner"
)

// ConvertFunc runs one conversion, see inliner.Convert
type ConvertFunc func(document, cssText string, removeStyleTags bool) (string, error)

// Server answers conversion requests against a fixed stylesheet
type Server struct {
	cfg     config.ServerConfig
	css     string
	convert ConvertFunc
	log     *zap.Logger
}

// Option customizes a Server created by New
type Option func(*Server)

// WithConverter replaces the conversion pipeline
func WithConverter(fn ConvertFunc) Option {
	return func(s *Server) {
		s.convert = fn
	}
}

// New creates a server converting every request against cssText. A nil log
// discards all output.
func New(cfg config.ServerConfig, cssText string, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		css:     cssText,
		convert: inliner.Convert,
		log:     log.Named("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type convertRequest struct {
	HTML string `json:"html"`
}

type convertResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

const headerRequestID = "X-Request-ID"

// Handler returns the routes of the service
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return s.withRequestID(mux)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		s.log.Debug("Request", zap.String("id", id), zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(zap.String("id", requestID(r.Context())))

	var req convertRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("Request body too large", zap.Int64("limit", tooLarge.Limit))
		} else {
			log.Debug("Undecodable request body", zap.Error(err))
		}
		writeJSON(w, http.StatusBadRequest, convertResponse{Error: "HTML is required"})
		return
	}
	if req.HTML == "" {
		writeJSON(w, http.StatusBadRequest, convertResponse{Error: "HTML is required"})
		return
	}

	result, err := s.convert(req.HTML, s.css, true)
	if err != nil {
		log.Error("Conversion error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, convertResponse{Error: "Conversion failed"})
		return
	}
	log.Debug("Converted", zap.Int("in", len(req.HTML)), zap.Int("out", len(result)))
	writeJSON(w, http.StatusOK, convertResponse{Result: result})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Run listens on the configured address and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("unable to listen on '%s': %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(s.log),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.log.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shutdown server: %w", err)
	}
	return nil
}
