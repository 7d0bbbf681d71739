// Package notify delivers outbound text messages to registered chats.
//
// Two senders are provided: BotAPI posts to a Telegram-compatible Bot API
// over HTTP (resty, with retries), and LogSender writes messages to the
// structured log for local runs without a bot token.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Sender delivers text to one chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// ErrRejected is returned when the Bot API answers with ok=false.
var ErrRejected = errors.New("bot api rejected message")

// BotAPIOptions configures NewBotAPI.
type BotAPIOptions struct {
	BaseURL    string        // e.g. https://api.telegram.org
	Token      string        // bot token, inserted as /bot<token>/
	Timeout    time.Duration // per request
	RetryCount int           // additional attempts on transport errors and 5xx
}

// BotAPI is a Sender backed by the Bot API sendMessage method.
type BotAPI struct {
	client *resty.Client
	token  string
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewBotAPI builds a BotAPI sender.
func NewBotAPI(opts BotAPIOptions) *BotAPI {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500 || r.StatusCode() == 429
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &BotAPI{client: client, token: opts.Token}
}

// Send posts text to chatID. Non-2xx responses and ok=false bodies are errors.
func (b *BotAPI) Send(ctx context.Context, chatID int64, text string) error {
	var out apiResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{ChatID: chatID, Text: text}).
		SetResult(&out).
		SetError(&out).
		Post("/bot" + b.token + "/sendMessage")
	if err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, b.scrub(err))
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("send to chat %d: status %d: %s: %w", chatID, resp.StatusCode(), out.Description, ErrRejected)
	}
	return nil
}

// scrub drops the request URL, which carries the bot token, from transport
// errors. The cause stays reachable through errors.Is/As.
func (b *BotAPI) scrub(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = fmt.Errorf("%s sendMessage: %w", uerr.Op, uerr.Err)
	}
	if b.token != "" && strings.Contains(err.Error(), b.token) {
		return tokenRedacted{err: err, token: b.token}
	}
	return err
}

// tokenRedacted masks the token in err's text.
type tokenRedacted struct {
	err   error
	token string
}

func (e tokenRedacted) Error() string {
	return strings.ReplaceAll(e.err.Error(), e.token, "<redacted>")
}

func (e tokenRedacted) Unwrap() error { return e.err }

// LogSender writes messages to the global logger instead of delivering them.
type LogSender struct{}

// Send logs the message at info level.
func (LogSender) Send(_ context.Context, chatID int64, text string) error {
	log.Info().
		Int64("chat_id", chatID).
		Str("text", text).
		Msg("notification (log sender)")
	return nil
}
