// Package bot runs tool requests that arrive as Telegram messages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"ai-tool-proxy/internal/proxy"
	"ai-tool-proxy/internal/telegram"
	"ai-tool-proxy/internal/tools"
)

const defaultCategory = "chatbot"

// Sender is the part of the Telegram client the handler needs.
type Sender interface {
	SendText(chatID int64, text string) error
	SendPhotoDataURL(chatID int64, dataURL string, caption string) error
	SendTyping(chatID int64)
}

// Runner executes one tool request.
type Runner interface {
	Run(ctx context.Context, req proxy.Request) (string, error)
}

type Options struct {
	Sender         Sender
	Runner         Runner
	Logger         *slog.Logger
	MaxConcurrent  int
	RequestTimeout time.Duration
}

type Handler struct {
	sender         Sender
	runner         Runner
	logger         *slog.Logger
	maxConcurrent  int
	requestTimeout time.Duration
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 180 * time.Second
	}

	return &Handler{
		sender:         opts.Sender,
		runner:         opts.Runner,
		logger:         logger,
		maxConcurrent:  maxConcurrent,
		requestTimeout: requestTimeout,
	}
}

// Serve handles updates with at most MaxConcurrent in flight. It returns when
// ctx is done or updates is closed, after in-flight handlers finish.
func (h *Handler) Serve(ctx context.Context, updates <-chan telegram.Update) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.maxConcurrent)

	for {
		select {
		case <-gctx.Done():
			return ignoreCanceled(g.Wait())
		case update, ok := <-updates:
			if !ok {
				return ignoreCanceled(g.Wait())
			}
			g.Go(func() error {
				reqCtx, cancel := context.WithTimeout(gctx, h.requestTimeout)
				defer cancel()

				if err := h.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					h.logger.Error("handle update failed", "update_id", update.UpdateID, "err", err)
				}
				return nil
			})
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, msg.Command(), strings.TrimSpace(msg.CommandArguments()))
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}
	return h.runTool(ctx, chatID, defaultCategory, text)
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, command, args string) error {
	switch command {
	case "start", "help":
		return h.sender.SendText(chatID, helpText())
	case "tools":
		return h.sender.SendText(chatID, toolsText())
	case "tool":
		category, prompt, _ := strings.Cut(args, " ")
		if category == "" {
			return h.sender.SendText(chatID, "❌ Usage: /tool <category> <prompt>")
		}
		return h.runTool(ctx, chatID, category, strings.TrimSpace(prompt))
	default:
		// Commands cannot contain '-', so /explain_code means explain-code.
		category := commandCategory(command)
		if _, ok := tools.Lookup(category); !ok {
			return h.sender.SendText(chatID, "❌ Unknown command. Use /help.")
		}
		return h.runTool(ctx, chatID, category, args)
	}
}

func (h *Handler) runTool(ctx context.Context, chatID int64, category, prompt string) error {
	h.sender.SendTyping(chatID)

	result, err := h.runner.Run(ctx, proxy.Request{ToolCategory: category, Prompt: prompt})
	if err != nil {
		var perr *proxy.Error
		if errors.As(err, &perr) {
			return h.sender.SendText(chatID, "❌ "+perr.Message)
		}
		h.logger.Error("tool run failed", "category", category, "err", err)
		return h.sender.SendText(chatID, "❌ Something went wrong. Please try again.")
	}

	if tool, _ := tools.Lookup(category); tool.Kind == tools.KindImage && telegram.IsDataURL(result) {
		return h.sender.SendPhotoDataURL(chatID, result, fmt.Sprintf("✅ %s", prompt))
	}
	return h.sender.SendText(chatID, result)
}

func commandCategory(command string) string {
	if _, ok := tools.Lookup(command); ok {
		return command
	}
	return strings.ReplaceAll(command, "_", "-")
}

func helpText() string {
	return "AI Tool Proxy\n\n" +
		"Send any text to chat with the model.\n\n" +
		"Commands:\n" +
		"/tools - list the available tools\n" +
		"/tool <category> <prompt> - run a tool by name\n" +
		"/<tool_name> <prompt> - shorthand, e.g. /summarization some text\n" +
		"/help - this message"
}

func toolsText() string {
	lines := lo.Map(tools.All(), func(t tools.Tool, _ int) string {
		return fmt.Sprintf("/%s (%s)", strings.ReplaceAll(t.Category, "-", "_"), t.Kind)
	})
	return "Available tools:\n" + strings.Join(lines, "\n")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
