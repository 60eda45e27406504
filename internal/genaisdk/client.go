// Package genaisdk serves the Google models through the official
// google.golang.org/genai SDK instead of hand-built REST payloads.
package genaisdk

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"ai-tool-proxy/internal/provider"
)

const (
	Name = "genai"

	CredentialEnv = "GOOGLE_API_KEY"

	defaultTextModel  = "gemini-2.0-flash"
	defaultImageModel = "imagen-3.0-generate-002"

	defaultImageMimeType = "image/png"
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
	sdk        *genai.Client
	apiKey     string
	textModel  string
	imageModel string
	logger     *slog.Logger
}

var _ provider.Provider = (*Client)(nil)

// New builds the SDK client. An empty API key is not an error here: requests
// report the missing credential when they arrive.
func New(ctx context.Context, opts Options) (*Client, error) {
	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = defaultTextModel
	}

	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = defaultImageModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		textModel:  textModel,
		imageModel: imageModel,
		logger:     logger,
	}
	if c.apiKey == "" {
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions.BaseURL = strings.TrimRight(base, "/") + "/"
	}
	if version := strings.TrimSpace(opts.APIVersion); version != "" {
		cfg.HTTPOptions.APIVersion = version
	}

	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.sdk = sdk
	return c, nil
}

func (c *Client) Name() string { return Name }

func (c *Client) GenerateText(ctx context.Context, prompt string) (text string, err error) {
	defer c.recoverSDK(&err)
	if c.sdk == nil {
		return "", &provider.MissingCredentialError{Env: CredentialEnv}
	}

	resp, err := c.sdk.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", c.classify(err)
	}

	text = resp.Text()
	if text == "" {
		return "", provider.ErrEmptyText
	}
	return text, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string) (dataURI string, err error) {
	defer c.recoverSDK(&err)
	if c.sdk == nil {
		return "", &provider.MissingCredentialError{Env: CredentialEnv}
	}

	resp, err := c.sdk.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return "", c.classify(err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return "", provider.ErrNoImage
	}
	img := resp.GeneratedImages[0].Image
	if img == nil || len(img.ImageBytes) == 0 {
		return "", provider.ErrNoImage
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = defaultImageMimeType
	}
	return provider.DataURI(mimeType, base64.StdEncoding.EncodeToString(img.ImageBytes)), nil
}

// classify maps SDK errors onto the shared provider errors.
func (c *Client) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		body, _ := json.Marshal(map[string]any{
			"error": map[string]any{
				"code":    apiErr.Code,
				"message": apiErr.Message,
				"status":  apiErr.Status,
			},
		})
		status := apiErr.Status
		if code := strconv.Itoa(apiErr.Code); !strings.HasPrefix(status, code) {
			status = strings.TrimSpace(code + " " + status)
		}
		return &provider.StatusError{
			Provider:   Name,
			StatusCode: apiErr.Code,
			Status:     status,
			Body:       body,
		}
	}
	return &provider.RequestError{Provider: Name, Err: err, Secrets: []string{c.apiKey}}
}

// recoverSDK turns a panic inside the SDK, such as an error reply without an
// "error" object, into a request error.
func (c *Client) recoverSDK(err *error) {
	if r := recover(); r != nil {
		c.logger.Error("genai sdk panic", "panic", r)
		*err = &provider.RequestError{Provider: Name, Err: fmt.Errorf("sdk panic: %v", r), Secrets: []string{c.apiKey}}
	}
}
