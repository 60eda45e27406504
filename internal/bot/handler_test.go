package bot

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ai-tool-proxy/internal/proxy"
	"ai-tool-proxy/internal/telegram"
)

type sentPhoto struct {
	dataURL string
	caption string
}

type fakeSender struct {
	mu     sync.Mutex
	texts  []string
	photos []sentPhoto
	typing int
}

func (f *fakeSender) SendText(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeSender) SendPhotoDataURL(chatID int64, dataURL string, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, sentPhoto{dataURL: dataURL, caption: caption})
	return nil
}

func (f *fakeSender) SendTyping(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing++
}

type fakeRunner struct {
	mu       sync.Mutex
	requests []proxy.Request
	result   string
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, req proxy.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func textUpdate(text string) telegram.Update {
	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return telegram.Update{UpdateID: 1, Message: msg}
}

func TestPlainTextRunsChatbot(t *testing.T) {
	sender := &fakeSender{}
	runner := &fakeRunner{result: "hello back"}
	h := New(Options{Sender: sender, Runner: runner})

	if err := h.HandleUpdate(context.Background(), textUpdate("hello")); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}
	if len(runner.requests) != 1 || runner.requests[0] != (proxy.Request{ToolCategory: "chatbot", Prompt: "hello"}) {
		t.Fatalf("unexpected requests %+v", runner.requests)
	}
	if len(sender.texts) != 1 || sender.texts[0] != "hello back" || sender.typing != 1 {
		t.Fatalf("unexpected replies %+v", sender)
	}
}

func TestShorthandCommand(t *testing.T) {
	tests := []struct {
		text     string
		category string
		prompt   string
	}{
		{"/summarization some text", "summarization", "some text"},
		{"/explain_code x := 1", "explain-code", "x := 1"},
		{"/text_generation a poem", "text_generation", "a poem"},
		{"/tool translation hola amigo", "translation", "hola amigo"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sender := &fakeSender{}
			runner := &fakeRunner{result: "ok"}
			h := New(Options{Sender: sender, Runner: runner})

			if err := h.HandleUpdate(context.Background(), textUpdate(tt.text)); err != nil {
				t.Fatalf("HandleUpdate() error = %v", err)
			}
			if len(runner.requests) != 1 {
				t.Fatalf("expected one run, got %d", len(runner.requests))
			}
			got := runner.requests[0]
			if got.ToolCategory != tt.category || got.Prompt != tt.prompt {
				t.Fatalf("got %+v, want %s/%q", got, tt.category, tt.prompt)
			}
		})
	}
}

func TestImageResultSentAsPhoto(t *testing.T) {
	sender := &fakeSender{}
	runner := &fakeRunner{result: "data:image/png;base64,QUJD"}
	h := New(Options{Sender: sender, Runner: runner})

	if err := h.HandleUpdate(context.Background(), textUpdate("/image_generation a red fox")); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}
	if len(sender.photos) != 1 || sender.photos[0].dataURL != "data:image/png;base64,QUJD" {
		t.Fatalf("expected photo reply, got %+v", sender)
	}
	if !strings.Contains(sender.photos[0].caption, "a red fox") {
		t.Fatalf("caption = %q", sender.photos[0].caption)
	}
}

func TestErrorsAreReported(t *testing.T) {
	sender := &fakeSender{}
	runner := &fakeRunner{err: &proxy.Error{Status: http.StatusBadRequest, Message: "Missing tool_category or prompt"}}
	h := New(Options{Sender: sender, Runner: runner})

	if err := h.HandleUpdate(context.Background(), textUpdate("/summarization")); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}
	if len(sender.texts) != 1 || sender.texts[0] != "❌ Missing tool_category or prompt" {
		t.Fatalf("unexpected replies %v", sender.texts)
	}

	sender = &fakeSender{}
	runner = &fakeRunner{err: errors.New("boom")}
	h = New(Options{Sender: sender, Runner: runner})
	if err := h.HandleUpdate(context.Background(), textUpdate("hi")); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}
	if len(sender.texts) != 1 || !strings.HasPrefix(sender.texts[0], "❌") {
		t.Fatalf("unexpected replies %v", sender.texts)
	}
}

func TestInfoCommands(t *testing.T) {
	sender := &fakeSender{}
	runner := &fakeRunner{}
	h := New(Options{Sender: sender, Runner: runner})

	for _, text := range []string{"/start", "/help", "/tools", "/nope something", "/tool"} {
		if err := h.HandleUpdate(context.Background(), textUpdate(text)); err != nil {
			t.Fatalf("HandleUpdate(%q) error = %v", text, err)
		}
	}
	if len(runner.requests) != 0 {
		t.Fatalf("info commands must not run tools: %+v", runner.requests)
	}
	if len(sender.texts) != 5 {
		t.Fatalf("expected 5 replies, got %d", len(sender.texts))
	}
	if !strings.Contains(sender.texts[2], "/explain_code (text)") || !strings.Contains(sender.texts[2], "/image_generation (image)") {
		t.Fatalf("tools listing incomplete: %s", sender.texts[2])
	}
	if !strings.Contains(sender.texts[3], "Unknown command") {
		t.Fatalf("unexpected reply %q", sender.texts[3])
	}
}

func TestIgnoresEmptyUpdates(t *testing.T) {
	sender := &fakeSender{}
	runner := &fakeRunner{}
	h := New(Options{Sender: sender, Runner: runner})

	if err := h.HandleUpdate(context.Background(), telegram.Update{}); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}
	if err := h.HandleUpdate(context.Background(), textUpdate("   ")); err != nil {
		t.Fatalf("HandleUpdate() error = %v", err)
	}
	if len(runner.requests) != 0 || len(sender.texts) != 0 {
		t.Fatalf("expected no activity")
	}
}

type blockingRunner struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	release  chan struct{}
	done     atomic.Int32
}

func (b *blockingRunner) Run(ctx context.Context, req proxy.Request) (string, error) {
	n := b.inFlight.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	defer b.inFlight.Add(-1)
	defer b.done.Add(1)

	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return "ok", nil
}

func TestServeBoundsConcurrency(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	h := New(Options{Sender: &fakeSender{}, Runner: runner, MaxConcurrent: 2, RequestTimeout: 5 * time.Second})

	updates := make(chan telegram.Update)
	errCh := make(chan error, 1)
	go func() { errCh <- h.Serve(context.Background(), updates) }()

	go func() {
		for i := 0; i < 5; i++ {
			updates <- textUpdate("hi")
		}
		close(updates)
	}()

	time.Sleep(100 * time.Millisecond)
	if peak := runner.peak.Load(); peak > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", peak)
	}
	close(runner.release)

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after updates closed")
	}
	if runner.done.Load() != 5 {
		t.Fatalf("handled %d updates, want 5", runner.done.Load())
	}
	if runner.peak.Load() > 2 {
		t.Fatalf("peak concurrency = %d", runner.peak.Load())
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	h := New(Options{Sender: &fakeSender{}, Runner: &fakeRunner{}})
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan telegram.Update)

	errCh := make(chan error, 1)
	go func() { errCh <- h.Serve(ctx, updates) }()
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not stop on cancel")
	}
}
