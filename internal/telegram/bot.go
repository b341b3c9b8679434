// Package telegram adapts the Telegram Bot API to the workflow engine:
// updates become workflow events, replies become messages with inline
// keyboards. Everything Telegram-specific stays inside this package.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"insurance-bot/internal/workflow"
)

// Bot is the channel adapter. It implements workflow.Outbox.
type Bot struct {
	api    *tgbotapi.BotAPI
	client *http.Client
}

// New connects to the Bot API with the given token. The timeout bounds
// every API call, including photo downloads.
func New(token string, timeout time.Duration) (*Bot, error) {
	client := &http.Client{Timeout: timeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	return &Bot{api: api, client: client}, nil
}

// Username returns the bot account name, for the startup banner.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// RegisterCommands publishes the command menu.
func (b *Bot) RegisterCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the car insurance process"},
		tgbotapi.BotCommand{Command: "ai", Description: "Ask a question about car insurance"},
	)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("failed to register bot commands: %w", err)
	}
	return nil
}

// Send implements workflow.Outbox.
func (b *Bot) Send(chatID int64, r workflow.Reply) error {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	if r.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(r.Buttons) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(r.Buttons))
		for _, row := range r.Buttons {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, btn := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Run long-polls for updates and feeds them into the dispatcher until ctx
// is canceled.
func (b *Bot) Run(ctx context.Context, d *workflow.Dispatcher) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.route(ctx, d, upd)
		}
	}
}

func (b *Bot) route(ctx context.Context, d *workflow.Dispatcher, upd tgbotapi.Update) {
	if cb := upd.CallbackQuery; cb != nil {
		// Ack immediately so the client stops the spinner.
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			log.Printf("failed to ack callback: %v", err)
		}
		if cb.Message == nil {
			return
		}
		d.Dispatch(cb.From.ID, cb.Message.Chat.ID, workflow.ButtonEvent{Data: cb.Data})
		return
	}

	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch {
	case msg.IsCommand():
		d.Dispatch(userID, chatID, workflow.CommandEvent{Name: msg.Command()})

	case len(msg.Photo) > 0:
		// Telegram sends several sizes; the last one is the largest.
		image, err := b.downloadPhoto(ctx, msg.Photo[len(msg.Photo)-1].FileID)
		if err != nil {
			log.Printf("failed to download photo from user %d: %v", userID, err)
			if err := b.Send(chatID, workflow.Reply{Text: workflow.MsgPhotoFailed}); err != nil {
				log.Printf("failed to send download apology: %v", err)
			}
			return
		}
		d.Dispatch(userID, chatID, workflow.PhotoEvent{Image: image})

	case msg.Text != "":
		d.Dispatch(userID, chatID, workflow.TextEvent{Text: msg.Text})
	}
}

// downloadPhoto fetches the file behind fileID, staging it in a temp file
// scoped to this one event. The file is removed on every exit path.
func (b *Bot) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned %d", resp.StatusCode)
	}

	return stageDocument(os.TempDir(), resp.Body)
}

// stageDocument copies r into a temp file under dir and reads it back.
// The file is scoped to this one call and removed on every exit path.
func stageDocument(dir string, r io.Reader) ([]byte, error) {
	tmpPath := filepath.Join(dir, "doc-"+uuid.NewString()+".jpg")
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp file: %w", err)
	}
	return data, nil
}
