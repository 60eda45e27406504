// Package web exposes the proxy service over HTTP.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ai-tool-proxy/internal/proxy"
	"ai-tool-proxy/internal/tools"
)

const (
	ProxyPath = "/ai-tool-proxy"

	defaultMaxBodyBytes = 1 << 20
)

type Options struct {
	Proxy           *proxy.Service
	Logger          *slog.Logger
	MaxBodyBytes    int64
	CORSAllowOrigin string
}

type Server struct {
	proxy        *proxy.Service
	logger       *slog.Logger
	maxBodyBytes int64
	allowOrigin  string
}

type apiError struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type resultResponse struct {
	Result string `json:"result"`
}

type toolInfo struct {
	Category string `json:"category"`
	Kind     string `json:"kind"`
}

type toolsResponse struct {
	Provider string     `json:"provider"`
	Tools    []toolInfo `json:"tools"`
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	maxBodyBytes := opts.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	allowOrigin := opts.CORSAllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	return &Server{
		proxy:        opts.Proxy,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
		allowOrigin:  allowOrigin,
	}
}

// Handler returns the routed handler wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(ProxyPath, s.handleProxy)
	mux.HandleFunc("/tools", s.handleTools)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return withLogging(withCORS(mux, s.allowOrigin), s.logger)
}

func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	req, err := decodeRequest(r.Body)
	if err != nil {
		s.logger.Warn("invalid request body", "err", err)
		writeError(w, proxy.ErrInvalidJSON(err))
		return
	}

	result, err := s.proxy.Run(r.Context(), req)
	if err != nil {
		var perr *proxy.Error
		if !errors.As(err, &perr) {
			perr = &proxy.Error{Status: http.StatusInternalServerError, Message: "An unexpected error occurred: " + err.Error()}
		}
		writeError(w, perr)
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{Result: result})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	all := tools.All()
	out := toolsResponse{Provider: s.proxy.ProviderName(), Tools: make([]toolInfo, 0, len(all))}
	for _, t := range all {
		out.Tools = append(out.Tools, toolInfo{Category: t.Category, Kind: t.Kind.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

// decodeRequest accepts exactly one JSON object; trailing data is an error.
func decodeRequest(body io.Reader) (proxy.Request, error) {
	var req proxy.Request
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return proxy.Request{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after request object")
		}
		return proxy.Request{}, err
	}
	return req, nil
}

func writeError(w http.ResponseWriter, perr *proxy.Error) {
	writeJSON(w, perr.Status, apiError{Error: perr.Message, Details: perr.Details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withCORS(next http.Handler, allowOrigin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"dur_ms", time.Since(start).Milliseconds(),
		)
	})
}
