// Package telegram adapts the Telegram Bot API to the bridge: a long-poll
// listener feeding the intake filter, and a notifier addressing the fixed
// administrator chat.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"kassa/internal/core"
	"kassa/internal/services"
)

// update is our own getUpdates payload. The pinned bot-api library predates
// forum topics and drops message_thread_id on decode, so the listener calls
// getUpdates through MakeRequest and decodes the result itself.
type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64  `json:"message_id"`
		ThreadID  int    `json:"message_thread_id"`
		Date      int64  `json:"date"`
		Text      string `json:"text"`
		From      *struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// Bot wraps the Telegram transport. Inbound messages go to the intake filter;
// outbound notifications go to the administrator.
type Bot struct {
	token   string
	adminID int64
	intake  *services.IntakeFilter
	bot     *tgbotapi.BotAPI

	// long-poll timeout in seconds for getUpdates
	pollTimeout int
}

func NewBot(token string, adminID int64, intake *services.IntakeFilter) *Bot {
	return &Bot{
		token:       token,
		adminID:     adminID,
		intake:      intake,
		pollTimeout: 60,
	}
}

// Connect authenticates against the Bot API. Must complete before Start or
// Send; connecting up front means the notifier is usable from the moment the
// rest of the pipeline starts, and the client pointer is written exactly once
// before any other goroutine reads it.
func (b *Bot) Connect(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("telegram init failed: %w", err)
	}
	b.bot = bot

	slog.InfoContext(ctx, "Telegram bot connected", "user", b.bot.Self.UserName)
	return nil
}

// Start long-polls for updates until the context is cancelled. Transport
// errors trigger a retry with exponential backoff.
func (b *Bot) Start(ctx context.Context) error {
	if b.bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}

	var offset int64
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := b.getUpdates(offset)
		if err != nil {
			slog.WarnContext(ctx, "Telegram poll failed, backing off",
				"error", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message != nil {
				b.handleMessage(ctx, u)
			}
		}
	}
}

// getUpdates performs one long-poll round trip.
func (b *Bot) getUpdates(offset int64) ([]update, error) {
	params := tgbotapi.Params{
		"offset":  strconv.FormatInt(offset, 10),
		"timeout": strconv.Itoa(b.pollTimeout),
	}
	resp, err := b.bot.MakeRequest("getUpdates", params)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	var updates []update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// handleMessage forwards one inbound message to the intake filter. Filtering
// (allow-list, thread, '+' gate) is entirely the filter's job; enqueue is
// fast, so handling stays inline with the poll loop.
func (b *Bot) handleMessage(ctx context.Context, u update) {
	msg := u.Message
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}
	inbound := core.InboundMessage{
		MessageID:  msg.MessageID,
		ChatID:     msg.Chat.ID,
		ThreadID:   msg.ThreadID,
		UserID:     userID,
		Text:       msg.Text,
		ReceivedAt: time.Unix(msg.Date, 0).UTC(),
	}
	if err := b.intake.Handle(ctx, inbound); err != nil {
		slog.ErrorContext(ctx, "Failed to queue inbound message",
			"message_id", msg.MessageID,
			"chat_id", msg.Chat.ID,
			"error", err)
	}
}

// Send delivers a notification to the administrator. Implements
// services.Notifier.
func (b *Bot) Send(ctx context.Context, text string) error {
	if b.bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.bot.Send(tgbotapi.NewMessage(b.adminID, text)); err != nil {
		return fmt.Errorf("send admin message: %w", err)
	}
	return nil
}
