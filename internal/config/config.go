package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderGoogle      = "google"
	ProviderHuggingFace = "huggingface"
	ProviderGenAI       = "genai"
)

type Config struct {
	Provider string

	GoogleAPIKey string
	HFAPIToken   string

	WebAddr         string
	MaxBodyBytes    int64
	CORSAllowOrigin string

	LogLevel string
	Debug    bool

	PreferIPv4   bool
	HTTPTimeout  time.Duration
	TextTimeout  time.Duration
	ImageTimeout time.Duration

	GeminiBaseURL    string
	GeminiAPIVersion string
	GeminiTextModel  string
	GeminiImageModel string

	HFBaseURL    string
	HFTextModel  string
	HFImageModel string

	TelegramToken string
	MaxConcurrent int
}

// Load reads defaults, then the YAML file named by CONFIG_FILE if set, then
// the environment. Credentials may be empty; requests report them as missing.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Config{
		Provider:         strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
		GoogleAPIKey:     strings.TrimSpace(v.GetString("google_api_key")),
		HFAPIToken:       strings.TrimSpace(v.GetString("hf_api_token")),
		WebAddr:          strings.TrimSpace(v.GetString("web_addr")),
		MaxBodyBytes:     v.GetInt64("max_body_bytes"),
		CORSAllowOrigin:  strings.TrimSpace(v.GetString("cors_allow_origin")),
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		Debug:            v.GetBool("debug"),
		PreferIPv4:       v.GetBool("prefer_ipv4"),
		HTTPTimeout:      time.Duration(v.GetInt("http_timeout_seconds")) * time.Second,
		TextTimeout:      time.Duration(v.GetInt("text_timeout_seconds")) * time.Second,
		ImageTimeout:     time.Duration(v.GetInt("image_timeout_seconds")) * time.Second,
		GeminiBaseURL:    strings.TrimSpace(v.GetString("gemini_base_url")),
		GeminiAPIVersion: strings.TrimSpace(v.GetString("gemini_api_version")),
		GeminiTextModel:  strings.TrimSpace(v.GetString("gemini_text_model")),
		GeminiImageModel: strings.TrimSpace(v.GetString("gemini_image_model")),
		HFBaseURL:        strings.TrimSpace(v.GetString("hf_base_url")),
		HFTextModel:      strings.TrimSpace(v.GetString("hf_text_model")),
		HFImageModel:     strings.TrimSpace(v.GetString("hf_image_model")),
		TelegramToken:    strings.TrimSpace(v.GetString("telegram_bot_token")),
		MaxConcurrent:    v.GetInt("max_concurrent"),
	}

	if cfg.WebAddr == "" {
		cfg.WebAddr = ":" + strings.TrimSpace(v.GetString("port"))
	}

	switch cfg.Provider {
	case ProviderGoogle, ProviderHuggingFace, ProviderGenAI:
	default:
		return Config{}, fmt.Errorf("unknown PROVIDER %q (want %s, %s or %s)",
			cfg.Provider, ProviderGoogle, ProviderHuggingFace, ProviderGenAI)
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.TextTimeout <= 0 {
		cfg.TextTimeout = 60 * time.Second
	}
	if cfg.ImageTimeout <= 0 {
		cfg.ImageTimeout = 120 * time.Second
	}
	if cfg.CORSAllowOrigin == "" {
		cfg.CORSAllowOrigin = "*"
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_file", "")
	v.SetDefault("provider", ProviderGoogle)
	v.SetDefault("google_api_key", "")
	v.SetDefault("hf_api_token", "")
	v.SetDefault("port", "8080")
	v.SetDefault("web_addr", "")
	v.SetDefault("max_body_bytes", 1<<20)
	v.SetDefault("cors_allow_origin", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("debug", false)
	v.SetDefault("prefer_ipv4", true)
	v.SetDefault("http_timeout_seconds", 180)
	v.SetDefault("text_timeout_seconds", 60)
	v.SetDefault("image_timeout_seconds", 120)
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini_api_version", "v1beta")
	v.SetDefault("gemini_text_model", "gemini-2.0-flash")
	v.SetDefault("gemini_image_model", "imagen-3.0-generate-002")
	v.SetDefault("hf_base_url", "https://api-inference.huggingface.co")
	v.SetDefault("hf_text_model", "mistralai/Mistral-7B-Instruct-v0.2")
	v.SetDefault("hf_image_model", "stabilityai/stable-diffusion-xl-base-1.0")
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("max_concurrent", 4)
}
