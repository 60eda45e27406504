// Package proxy validates tool requests, dispatches them through the tool
// catalog and runs exactly one provider call per request.
package proxy

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ai-tool-proxy/internal/provider"
	"ai-tool-proxy/internal/tools"
)

const (
	defaultTextTimeout  = 60 * time.Second
	defaultImageTimeout = 120 * time.Second
)

// Request is the inbound body. Tool is the legacy spelling of ToolCategory.
type Request struct {
	ToolCategory string `json:"tool_category"`
	Tool         string `json:"tool,omitempty"`
	Prompt       string `json:"prompt"`
}

func (r Request) category() string {
	if r.ToolCategory != "" {
		return r.ToolCategory
	}
	return r.Tool
}

type Options struct {
	Provider     provider.Provider
	TextTimeout  time.Duration
	ImageTimeout time.Duration
	Logger       *slog.Logger
}

type Service struct {
	provider     provider.Provider
	textTimeout  time.Duration
	imageTimeout time.Duration
	logger       *slog.Logger
}

func New(opts Options) *Service {
	textTimeout := opts.TextTimeout
	if textTimeout <= 0 {
		textTimeout = defaultTextTimeout
	}

	imageTimeout := opts.ImageTimeout
	if imageTimeout <= 0 {
		imageTimeout = defaultImageTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Service{
		provider:     opts.Provider,
		textTimeout:  textTimeout,
		imageTimeout: imageTimeout,
		logger:       logger,
	}
}

// ProviderName reports the configured backend.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Run returns the generated text or image data URI for req. Every failure is
// a *Error.
func (s *Service) Run(ctx context.Context, req Request) (string, error) {
	category := req.category()
	if category == "" || req.Prompt == "" {
		s.logger.Warn("tool request rejected", "reason", "missing fields")
		return "", badRequest(msgMissingFields)
	}

	tool, ok := tools.Lookup(category)
	if !ok {
		s.logger.Warn("tool request rejected", "reason", "unsupported category", "category", category)
		return "", badRequest(msgUnsupported)
	}

	if s.provider == nil {
		return "", &Error{Status: http.StatusInternalServerError, Message: msgUnexpectedError + "no provider configured"}
	}

	timeout := s.textTimeout
	if tool.Kind == tools.KindImage {
		timeout = s.imageTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var (
		result string
		err    error
	)
	switch tool.Kind {
	case tools.KindImage:
		result, err = s.provider.GenerateImage(callCtx, tool.Render(req.Prompt))
	default:
		result, err = s.provider.GenerateText(callCtx, tool.Render(req.Prompt))
	}

	logArgs := []any{
		"category", tool.Category,
		"kind", tool.Kind.String(),
		"provider", s.provider.Name(),
		"dur_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		perr := classify(err)
		s.logger.Error("tool request failed", append(logArgs, "status", perr.Status, "err", err)...)
		return "", perr
	}

	s.logger.Info("tool request served", logArgs...)
	return result, nil
}
