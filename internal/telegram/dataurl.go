package telegram

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

type decodedImage struct {
	MimeType string
	Data     []byte
}

// IsDataURL reports whether value looks like a base64 data URI.
func IsDataURL(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "data:")
}

func decodeDataURL(value string) (decodedImage, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decodedImage{}, errors.New("empty data url")
	}
	if !IsDataURL(value) {
		return decodedImage{}, errors.New("not a data url")
	}

	meta, payload, ok := strings.Cut(strings.TrimPrefix(value, "data:"), ",")
	if !ok {
		return decodedImage{}, errors.New("invalid data url")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return decodedImage{}, errors.New("data url is not base64 encoded")
	}

	mimeType := strings.TrimSpace(strings.TrimSuffix(meta, ";base64"))
	if mimeType == "" {
		mimeType = "image/png"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return decodedImage{}, fmt.Errorf("decode base64: %w", err)
	}
	return decodedImage{MimeType: mimeType, Data: data}, nil
}
