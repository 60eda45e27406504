// Package huggingface calls the Hugging Face Inference API for text and image
// models.
package huggingface

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"ai-tool-proxy/internal/provider"
)

const (
	Name = "huggingface"

	CredentialEnv = "HF_API_TOKEN"

	defaultBaseURL    = "https://api-inference.huggingface.co"
	defaultTextModel  = "mistralai/Mistral-7B-Instruct-v0.2"
	defaultImageModel = "stabilityai/stable-diffusion-xl-base-1.0"

	defaultImageMimeType = "image/jpeg"
)

type Options struct {
	Token      string
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	token      string
	baseURL    string
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

	textModel := strings.Trim(strings.TrimSpace(opts.TextModel), "/")
	if textModel == "" {
		textModel = defaultTextModel
	}

	imageModel := strings.Trim(strings.TrimSpace(opts.ImageModel), "/")
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
		token:      strings.TrimSpace(opts.Token),
		baseURL:    baseURL,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) Name() string { return Name }

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type textGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// GenerateText returns generated_text of the first element of the reply array.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.token == "" {
		return "", &provider.MissingCredentialError{Env: CredentialEnv}
	}

	rawBody, _, err := c.call(ctx, c.textModel, prompt)
	if err != nil {
		return "", err
	}

	var out []textGeneration
	if err := json.Unmarshal(rawBody, &out); err != nil {
		return "", c.requestError(fmt.Errorf("decode response: %w", err))
	}
	if len(out) == 0 || out[0].GeneratedText == "" {
		return "", provider.ErrEmptyText
	}
	return out[0].GeneratedText, nil
}

// GenerateImage returns the raw image reply as a base64 data URI.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.token == "" {
		return "", &provider.MissingCredentialError{Env: CredentialEnv}
	}

	rawBody, contentType, err := c.call(ctx, c.imageModel, prompt)
	if err != nil {
		return "", err
	}
	if len(rawBody) == 0 {
		return "", provider.ErrNoImage
	}

	mimeType := imageMimeType(contentType)
	if mimeType == "" {
		c.logger.Warn("huggingface image reply is not an image", "content_type", contentType, "bytes", len(rawBody))
		return "", provider.ErrNoImage
	}

	return provider.DataURI(mimeType, base64.StdEncoding.EncodeToString(rawBody)), nil
}

func (c *Client) call(ctx context.Context, model, prompt string) ([]byte, string, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", c.requestError(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("authorization", "Bearer "+c.token)

	c.logger.Debug("huggingface call", "model", model, "bytes", len(body))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", c.requestError(err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, "", c.requestError(fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, "", &provider.StatusError{
			Provider:   Name,
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       rawBody,
		}
	}

	return rawBody, httpResp.Header.Get("content-type"), nil
}

func (c *Client) requestError(err error) error {
	return &provider.RequestError{Provider: Name, Err: err, Secrets: []string{c.token}}
}

// imageMimeType picks the data URI type for an image reply. A missing or
// generic content type falls back to JPEG; JSON or text means no image.
func imageMimeType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		return defaultImageMimeType
	}
	if strings.HasPrefix(mediaType, "image/") {
		return mediaType
	}
	return ""
}
