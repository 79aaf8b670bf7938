package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kassa/internal/core"
)

// DailyReporter sends the accumulated total to the administrator once a day
// and settles the ledger. Emission and settle form one fallible unit: if the
// report cannot be delivered the total is left untouched, so nothing is lost.
type DailyReporter struct {
	ledger    Ledger
	notifier  Notifier
	publisher EventPublisher // optional
	loc       *time.Location

	now func() time.Time
}

func NewDailyReporter(ledger Ledger, notifier Notifier, publisher EventPublisher, loc *time.Location) *DailyReporter {
	return &DailyReporter{
		ledger:    ledger,
		notifier:  notifier,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

// Run produces one daily report. Invoked by the scheduler, which guarantees
// non-overlapping runs.
func (r *DailyReporter) Run(ctx context.Context) error {
	total, err := r.ledger.LedgerTotal(ctx)
	if err != nil {
		return fmt.Errorf("read ledger total: %w", err)
	}

	date := core.FormatDate(r.now(), r.loc)
	text := fmt.Sprintf("%s BYN • %s", core.Money{Cents: total}.Format(), date)

	if err := r.notifier.Send(ctx, text); err != nil {
		// Settle is withheld: the total carries over to the next run.
		return fmt.Errorf("send daily report: %w", err)
	}

	if r.publisher != nil {
		if err := r.publisher.PublishDailyReport(ctx, total, date); err != nil {
			slog.ErrorContext(ctx, "Failed to publish daily report event", "error", err)
		}
	}

	if err := r.ledger.SettleLedger(ctx, total); err != nil {
		return fmt.Errorf("settle ledger after report: %w", err)
	}

	slog.InfoContext(ctx, "Daily report sent",
		"total_cents", total,
		"date", date)
	return nil
}
