package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// PendingRow mirrors one pending_messages row. Instants are unix seconds.
type PendingRow struct {
	ID        int64
	MessageID int64
	ChatID    int64
	ThreadID  int64
	UserID    sql.NullInt64
	Text      string
	CreatedAt int64
	ReadyAt   int64
	Processed int64
}

// EntryRow mirrors one entries row.
type EntryRow struct {
	ID           int64
	AmountCents  int64
	TriggerLabel string
	ChatTitle    string
	ChatID       int64
	OccurredAt   int64
}

const createPending = `
INSERT INTO pending_messages (message_id, chat_id, thread_id, user_id, text, created_at, ready_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreatePendingParams struct {
	MessageID int64
	ChatID    int64
	ThreadID  int64
	UserID    sql.NullInt64
	Text      string
	CreatedAt int64
	ReadyAt   int64
}

func (q *Queries) CreatePending(ctx context.Context, arg CreatePendingParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createPending,
		arg.MessageID, arg.ChatID, arg.ThreadID, arg.UserID, arg.Text, arg.CreatedAt, arg.ReadyAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getDuePending = `
SELECT id, message_id, chat_id, thread_id, user_id, text, created_at, ready_at, processed
FROM pending_messages
WHERE processed = 0 AND ready_at <= ?
ORDER BY id ASC
`

func (q *Queries) GetDuePending(ctx context.Context, readyBefore int64) ([]PendingRow, error) {
	rows, err := q.db.QueryContext(ctx, getDuePending, readyBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PendingRow
	for rows.Next() {
		var r PendingRow
		if err := rows.Scan(&r.ID, &r.MessageID, &r.ChatID, &r.ThreadID, &r.UserID,
			&r.Text, &r.CreatedAt, &r.ReadyAt, &r.Processed); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const claimPending = `
UPDATE pending_messages SET processed = 1 WHERE id = ? AND processed = 0
`

// ClaimPending flips the processed flag. Reports whether this call did the
// flip; a second call for the same id is a no-op returning false.
func (q *Queries) ClaimPending(ctx context.Context, id int64) (bool, error) {
	res, err := q.db.ExecContext(ctx, claimPending, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const countPending = `
SELECT COUNT(*) FROM pending_messages WHERE processed = 0
`

func (q *Queries) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPending).Scan(&n)
	return n, err
}

const addToLedger = `
UPDATE ledger SET total_cents = total_cents + ?, updated_at = ? WHERE id = 1
`

func (q *Queries) AddToLedger(ctx context.Context, cents, updatedAt int64) error {
	_, err := q.db.ExecContext(ctx, addToLedger, cents, updatedAt)
	return err
}

const getLedgerTotal = `
SELECT total_cents FROM ledger WHERE id = 1
`

func (q *Queries) GetLedgerTotal(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, getLedgerTotal).Scan(&total)
	return total, err
}

const settleLedger = `
UPDATE ledger SET total_cents = total_cents - ?, updated_at = ? WHERE id = 1
`

func (q *Queries) SettleLedger(ctx context.Context, cents, updatedAt int64) error {
	_, err := q.db.ExecContext(ctx, settleLedger, cents, updatedAt)
	return err
}

const createEntry = `
INSERT INTO entries (amount_cents, trigger_label, chat_title, chat_id, occurred_at)
VALUES (?, ?, ?, ?, ?)
`

type CreateEntryParams struct {
	AmountCents  int64
	TriggerLabel string
	ChatTitle    string
	ChatID       int64
	OccurredAt   int64
}

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) error {
	_, err := q.db.ExecContext(ctx, createEntry,
		arg.AmountCents, arg.TriggerLabel, arg.ChatTitle, arg.ChatID, arg.OccurredAt)
	return err
}

const getRecentEntries = `
SELECT id, amount_cents, trigger_label, chat_title, chat_id, occurred_at
FROM entries
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) GetRecentEntries(ctx context.Context, limit int64) ([]EntryRow, error) {
	rows, err := q.db.QueryContext(ctx, getRecentEntries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []EntryRow
	for rows.Next() {
		var r EntryRow
		if err := rows.Scan(&r.ID, &r.AmountCents, &r.TriggerLabel, &r.ChatTitle,
			&r.ChatID, &r.OccurredAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
