// Package app wires configuration into the logger, outbound client, provider
// and proxy service shared by the web and bot binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"ai-tool-proxy/internal/config"
	"ai-tool-proxy/internal/gemini"
	"ai-tool-proxy/internal/genaisdk"
	"ai-tool-proxy/internal/httpclient"
	"ai-tool-proxy/internal/huggingface"
	"ai-tool-proxy/internal/provider"
	"ai-tool-proxy/internal/proxy"
)

func NewLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

func NewHTTPClient(cfg config.Config) *http.Client {
	return httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})
}

// NewProvider returns the backend selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.Config, httpClient *http.Client, logger *slog.Logger) (provider.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGoogle:
		return gemini.New(gemini.Options{
			APIKey:     cfg.GoogleAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			TextModel:  cfg.GeminiTextModel,
			ImageModel: cfg.GeminiImageModel,
			HTTPClient: httpClient,
			Logger:     logger,
		}), nil
	case config.ProviderHuggingFace:
		return huggingface.New(huggingface.Options{
			Token:      cfg.HFAPIToken,
			BaseURL:    cfg.HFBaseURL,
			TextModel:  cfg.HFTextModel,
			ImageModel: cfg.HFImageModel,
			HTTPClient: httpClient,
			Logger:     logger,
		}), nil
	case config.ProviderGenAI:
		return genaisdk.New(ctx, genaisdk.Options{
			APIKey:     cfg.GoogleAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			TextModel:  cfg.GeminiTextModel,
			ImageModel: cfg.GeminiImageModel,
			HTTPClient: httpClient,
			Logger:     logger,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// NewProxy builds the proxy service for cfg.
func NewProxy(ctx context.Context, cfg config.Config, logger *slog.Logger) (*proxy.Service, error) {
	p, err := NewProvider(ctx, cfg, NewHTTPClient(cfg), logger)
	if err != nil {
		return nil, err
	}

	return proxy.New(proxy.Options{
		Provider:     p,
		TextTimeout:  cfg.TextTimeout,
		ImageTimeout: cfg.ImageTimeout,
		Logger:       logger,
	}), nil
}
