package amqp

import (
	"encoding/json"
	"time"

	"kassa/internal/core"
)

// EntryEvent is published once per ledgered activity entry.
type EntryEvent struct {
	AmountCents  int64     `json:"amount_cents"`
	TriggerLabel string    `json:"trigger_label"`
	ChatTitle    string    `json:"chat_title"`
	ChatID       int64     `json:"chat_id"`
	TotalCents   int64     `json:"total_cents"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewEntryEvent(e core.Entry, totalCents int64) *EntryEvent {
	return &EntryEvent{
		AmountCents:  e.Amount.Cents,
		TriggerLabel: e.Label,
		ChatTitle:    e.ChatTitle,
		ChatID:       e.ChatID,
		TotalCents:   totalCents,
		OccurredAt:   e.OccurredAt,
	}
}

func (m *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportEvent is published once per successful daily report.
type ReportEvent struct {
	TotalCents int64     `json:"total_cents"`
	Date       string    `json:"date"`
	SentAt     time.Time `json:"sent_at"`
}

func NewReportEvent(totalCents int64, date string) *ReportEvent {
	return &ReportEvent{
		TotalCents: totalCents,
		Date:       date,
		SentAt:     time.Now().UTC(),
	}
}

func (m *ReportEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
