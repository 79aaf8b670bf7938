// Package storage persists the pending message queue, the ledger singleton,
// and the append-only activity log in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kassa/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// EnqueuePending appends a message to the pending queue.
func (r *SQLiteRepository) EnqueuePending(ctx context.Context, msg core.PendingMessage) (int64, error) {
	userID := sql.NullInt64{Int64: msg.UserID, Valid: msg.UserID != 0}
	id, err := r.queries.CreatePending(ctx, CreatePendingParams{
		MessageID: msg.MessageID,
		ChatID:    msg.ChatID,
		ThreadID:  int64(msg.ThreadID),
		UserID:    userID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt.Unix(),
		ReadyAt:   msg.ReadyAt.Unix(),
	})
	if err != nil {
		return 0, fmt.Errorf("create pending message: %w", err)
	}

	slog.InfoContext(ctx, "Pending message saved",
		"id", id,
		"message_id", msg.MessageID,
		"chat_id", msg.ChatID,
		"ready_at", msg.ReadyAt.UTC().Format(time.RFC3339))

	return id, nil
}

// DuePending returns all unprocessed messages whose delay has elapsed, in
// insertion order. Pure read.
func (r *SQLiteRepository) DuePending(ctx context.Context, now time.Time) ([]core.PendingMessage, error) {
	rows, err := r.queries.GetDuePending(ctx, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("get due pending messages: %w", err)
	}

	items := make([]core.PendingMessage, len(rows))
	for i, row := range rows {
		items[i] = core.PendingMessage{
			ID:        row.ID,
			MessageID: row.MessageID,
			ChatID:    row.ChatID,
			ThreadID:  int(row.ThreadID),
			UserID:    row.UserID.Int64,
			Text:      row.Text,
			CreatedAt: time.Unix(row.CreatedAt, 0).UTC(),
			ReadyAt:   time.Unix(row.ReadyAt, 0).UTC(),
			Processed: row.Processed != 0,
		}
	}
	return items, nil
}

// ClaimPending marks a message processed and reports whether this call won
// the claim. Claiming an already-processed id is a no-op returning false, so
// each message reaches the ledger at most once even under overlapping scans.
func (r *SQLiteRepository) ClaimPending(ctx context.Context, id int64) (bool, error) {
	claimed, err := r.queries.ClaimPending(ctx, id)
	if err != nil {
		return false, fmt.Errorf("claim pending message %d: %w", id, err)
	}
	return claimed, nil
}

// AddToLedger atomically adds cents to the running total and returns the new
// total. The update and the read happen in one transaction.
func (r *SQLiteRepository) AddToLedger(ctx context.Context, cents int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.AddToLedger(ctx, cents, time.Now().Unix()); err != nil {
		return 0, fmt.Errorf("add to ledger: %w", err)
	}
	total, err := q.GetLedgerTotal(ctx)
	if err != nil {
		return 0, fmt.Errorf("read ledger total: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ledger transaction: %w", err)
	}
	return total, nil
}

// LedgerTotal returns the current running total in cents.
func (r *SQLiteRepository) LedgerTotal(ctx context.Context) (int64, error) {
	total, err := r.queries.GetLedgerTotal(ctx)
	if err != nil {
		return 0, fmt.Errorf("read ledger total: %w", err)
	}
	return total, nil
}

// SettleLedger subtracts an already-reported amount from the running total.
// Subtracting instead of zeroing means an amount accumulated between the
// report read and the settle is carried into the next reporting period
// rather than silently dropped.
func (r *SQLiteRepository) SettleLedger(ctx context.Context, reportedCents int64) error {
	if err := r.queries.SettleLedger(ctx, reportedCents, time.Now().Unix()); err != nil {
		return fmt.Errorf("settle ledger: %w", err)
	}
	slog.InfoContext(ctx, "Ledger settled", "reported_cents", reportedCents)
	return nil
}

// AppendEntry records one activity-log entry. Entries are never mutated or
// deleted.
func (r *SQLiteRepository) AppendEntry(ctx context.Context, e core.Entry) error {
	err := r.queries.CreateEntry(ctx, CreateEntryParams{
		AmountCents:  e.Amount.Cents,
		TriggerLabel: e.Label,
		ChatTitle:    e.ChatTitle,
		ChatID:       e.ChatID,
		OccurredAt:   e.OccurredAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// RecentEntries returns the newest activity-log entries, newest first.
func (r *SQLiteRepository) RecentEntries(ctx context.Context, limit int) ([]core.Entry, error) {
	rows, err := r.queries.GetRecentEntries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get recent entries: %w", err)
	}
	entries := make([]core.Entry, len(rows))
	for i, row := range rows {
		entries[i] = core.Entry{
			Amount:     core.Money{Cents: row.AmountCents},
			Label:      row.TriggerLabel,
			ChatTitle:  row.ChatTitle,
			ChatID:     row.ChatID,
			OccurredAt: time.Unix(row.OccurredAt, 0).UTC(),
		}
	}
	return entries, nil
}

// PendingBacklog returns the number of unprocessed queue rows.
func (r *SQLiteRepository) PendingBacklog(ctx context.Context) (int64, error) {
	n, err := r.queries.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("count pending messages: %w", err)
	}
	return n, nil
}
