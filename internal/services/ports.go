// Package services holds the business logic of the bridge: the intake
// filter, the due-item processor, and the daily reporter, wired to storage
// and transport through small ports.
package services

import (
	"context"
	"time"

	"kassa/internal/core"
)

// Ports for outbound adapters.
type (
	// PendingQueue is the durable delayed queue.
	PendingQueue interface {
		EnqueuePending(ctx context.Context, msg core.PendingMessage) (int64, error)
		DuePending(ctx context.Context, now time.Time) ([]core.PendingMessage, error)
		// ClaimPending marks a message processed; false means another scan
		// already claimed it.
		ClaimPending(ctx context.Context, id int64) (bool, error)
	}

	// Ledger is the durable running total.
	Ledger interface {
		AddToLedger(ctx context.Context, cents int64) (newTotal int64, err error)
		LedgerTotal(ctx context.Context) (int64, error)
		SettleLedger(ctx context.Context, reportedCents int64) error
	}

	// ActivityLog is the append-only audit record.
	ActivityLog interface {
		AppendEntry(ctx context.Context, e core.Entry) error
	}

	// Notifier delivers text to the administrator.
	Notifier interface {
		Send(ctx context.Context, text string) error
	}

	// EntryMirror copies activity-log entries to an external sink (e.g. a
	// spreadsheet). Mirror failures never affect ledger state.
	EntryMirror interface {
		AppendEntry(ctx context.Context, e core.Entry) error
	}

	// EventPublisher fans processed entries and daily reports out to a
	// message broker for downstream consumers.
	EventPublisher interface {
		PublishEntry(ctx context.Context, e core.Entry, newTotalCents int64) error
		PublishDailyReport(ctx context.Context, totalCents int64, date string) error
	}
)
