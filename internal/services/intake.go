package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kassa/internal/config"
	"kassa/internal/core"
)

// IntakeFilter decides whether an inbound message belongs to a tracked
// conversation thread and queues it for delayed processing.
type IntakeFilter struct {
	chats map[int64]config.TrackedChat
	queue PendingQueue
	delay time.Duration

	now func() time.Time
}

func NewIntakeFilter(chats map[int64]config.TrackedChat, queue PendingQueue, delay time.Duration) *IntakeFilter {
	return &IntakeFilter{
		chats: chats,
		queue: queue,
		delay: delay,
		now:   time.Now,
	}
}

// Admit reports whether a message from the given chat and thread should be
// queued. Rejections are silent by design: wrong chat, wrong thread, or text
// without a '+' are normal traffic, not errors.
func (f *IntakeFilter) Admit(chatID int64, threadID int, text string) (config.TrackedChat, bool) {
	chat, ok := f.chats[chatID]
	if !ok {
		return config.TrackedChat{}, false
	}
	if chat.ThreadID != threadID {
		return config.TrackedChat{}, false
	}
	if !strings.Contains(text, "+") {
		return config.TrackedChat{}, false
	}
	return chat, true
}

// Handle admits and enqueues one inbound message. The text is stored
// verbatim; parsing is deferred to the due-item processor so a trigger
// vocabulary change between intake and processing applies at processing time.
func (f *IntakeFilter) Handle(ctx context.Context, msg core.InboundMessage) error {
	text := strings.TrimSpace(msg.Text)
	chat, ok := f.Admit(msg.ChatID, msg.ThreadID, text)
	if !ok {
		return nil
	}

	now := f.now().UTC()
	id, err := f.queue.EnqueuePending(ctx, core.PendingMessage{
		MessageID: msg.MessageID,
		ChatID:    msg.ChatID,
		ThreadID:  msg.ThreadID,
		UserID:    msg.UserID,
		Text:      text,
		CreatedAt: now,
		ReadyAt:   now.Add(f.delay),
	})
	if err != nil {
		return fmt.Errorf("enqueue message %d from chat %d: %w", msg.MessageID, msg.ChatID, err)
	}

	slog.InfoContext(ctx, "Message queued for delayed processing",
		"pending_id", id,
		"message_id", msg.MessageID,
		"chat_title", chat.Title,
		"delay", f.delay)
	return nil
}
