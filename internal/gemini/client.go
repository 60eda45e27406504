// Package gemini talks to the Google Generative Language REST API: Gemini
// generateContent for text and Imagen predict for images.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"ai-tool-proxy/internal/provider"
)

const (
	Name = "gemini"

	CredentialEnv = "GOOGLE_API_KEY"

	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultAPIVersion = "v1beta"
	defaultTextModel  = "gemini-2.0-flash"
	defaultImageModel = "imagen-3.0-generate-002"

	imageMimeType = "image/png"
)

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ provider.Provider = (*Client)(nil)

func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = defaultTextModel
	}

	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = defaultImageModel
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		apiVersion: apiVersion,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) Name() string { return Name }

// GenerateText sends prompt as a single user turn and returns the first part of
// the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &provider.MissingCredentialError{Env: CredentialEnv}
	}

	req := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
	}

	var resp generateContentResponse
	if err := c.call(ctx, c.textModel, "generateContent", req, &resp); err != nil {
		return "", err
	}
	return extractText(resp)
}

// GenerateImage asks Imagen for one sample and returns it as a PNG data URI.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &provider.MissingCredentialError{Env: CredentialEnv}
	}

	req := predictRequest{
		Instances:  instance{Prompt: prompt},
		Parameters: predictParameters{SampleCount: 1},
	}

	var resp predictResponse
	if err := c.call(ctx, c.imageModel, "predict", req, &resp); err != nil {
		return "", err
	}
	return extractImage(resp)
}

func (c *Client) call(ctx context.Context, model, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:%s?key=%s",
		c.baseURL, c.apiVersion, url.PathEscape(model), method, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return c.requestError(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("content-type", "application/json")

	c.logger.Debug("gemini call", "model", model, "method", method, "bytes", len(body))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.requestError(err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return c.requestError(fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &provider.StatusError{
			Provider:   Name,
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       rawBody,
		}
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		return c.requestError(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) requestError(err error) error {
	return &provider.RequestError{
		Provider: Name,
		Err:      err,
		Secrets:  []string{c.apiKey, url.QueryEscape(c.apiKey)},
	}
}

func extractText(resp generateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", provider.ErrEmptyText
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", provider.ErrEmptyText
	}
	return parts[0].Text, nil
}

func extractImage(resp predictResponse) (string, error) {
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return "", provider.ErrNoImage
	}
	return provider.DataURI(imageMimeType, resp.Predictions[0].BytesBase64Encoded), nil
}
