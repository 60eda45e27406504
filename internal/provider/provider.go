// Package provider defines the contract every generative-AI backend satisfies
// and the errors the proxy classifies into HTTP statuses.
package provider

import (
	"context"
	"fmt"
)

// Provider turns a rendered prompt into either generated text or an image data URI.
type Provider interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// DataURI wraps base64 encoded bytes as a data: URI.
func DataURI(mimeType, base64Data string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)
}
