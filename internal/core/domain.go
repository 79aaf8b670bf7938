package core

import "time"

type (
	// InboundMessage is a chat message as delivered by the transport, before
	// any filtering.
	InboundMessage struct {
		MessageID  int64
		ChatID     int64
		ThreadID   int
		UserID     int64
		Text       string
		ReceivedAt time.Time
	}

	// PendingMessage is one queued message awaiting delayed processing.
	// Rows are append-only: Processed flips to true exactly once and the row
	// is never deleted, serving as an audit trail.
	PendingMessage struct {
		ID        int64
		MessageID int64
		ChatID    int64
		ThreadID  int
		UserID    int64
		Text      string
		CreatedAt time.Time
		ReadyAt   time.Time
		Processed bool
	}

	// Entry is one append-only activity-log record, written once per
	// successfully parsed pending message.
	Entry struct {
		Amount     Money
		Label      string
		ChatTitle  string
		ChatID     int64
		OccurredAt time.Time
	}
)
