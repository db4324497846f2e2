package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	telegramAPIBase = "https://api.telegram.org"

	// sendTimeout bounds each alert delivery so a slow Telegram endpoint can
	// never stall the job.
	sendTimeout = 5 * time.Second
)

var (
	// ErrTelegramCredentialsRequired is returned when BotToken/ChatID are missing.
	ErrTelegramCredentialsRequired = errors.New("telegram bot token and chat id are required")
	// ErrTelegramUnexpectedStatus is returned when the API answers anything but 200.
	ErrTelegramUnexpectedStatus = errors.New("telegram api returned unexpected status")
)

// Telegram is a Notifier that posts alerts to the Telegram Bot API.
type Telegram struct {
	sendURL string
	chatID  string
	client  *http.Client
}

// TelegramConfig configures the Telegram notifier.
type TelegramConfig struct {
	// BotToken authenticates against the Bot API.
	BotToken string
	// ChatID is the recipient chat.
	ChatID string
	// BaseURL overrides the API host, for tests. Defaults to the public API.
	BaseURL string
	// Client overrides the HTTP client, for tests.
	Client *http.Client
}

// NewTelegram constructs a Telegram notifier.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, ErrTelegramCredentialsRequired
	}

	base := cfg.BaseURL
	if base == "" {
		base = telegramAPIBase
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: sendTimeout}
	}

	return &Telegram{
		sendURL: fmt.Sprintf("%s/bot%s/sendMessage", base, cfg.BotToken),
		chatID:  cfg.ChatID,
		client:  client,
	}, nil
}

// Notify posts the text to the configured chat. A response status other than
// 200 is an error; callers decide whether to swallow it.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.sendURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	//nolint:errcheck // drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrTelegramUnexpectedStatus, resp.Status)
	}

	return nil
}
