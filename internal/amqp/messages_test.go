package amqp

import (
	"encoding/json"
	"testing"
	"time"

	"kassa/internal/core"
)

func TestNewEntryEvent(t *testing.T) {
	occurred := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	e := core.Entry{
		Amount:     core.Money{Cents: 405},
		Label:      "+ мк синяя",
		ChatTitle:  "Пекарня",
		ChatID:     -1002079167705,
		OccurredAt: occurred,
	}

	ev := NewEntryEvent(e, 661)

	if ev.AmountCents != 405 {
		t.Errorf("AmountCents = %v, want 405", ev.AmountCents)
	}
	if ev.TriggerLabel != "+ мк синяя" {
		t.Errorf("TriggerLabel = %v", ev.TriggerLabel)
	}
	if ev.TotalCents != 661 {
		t.Errorf("TotalCents = %v, want 661", ev.TotalCents)
	}
	if !ev.OccurredAt.Equal(occurred) {
		t.Errorf("OccurredAt = %v, want %v", ev.OccurredAt, occurred)
	}
}

func TestEntryEvent_JSON(t *testing.T) {
	ev := &EntryEvent{
		AmountCents:  256,
		TriggerLabel: "+",
		ChatTitle:    "Test",
		ChatID:       -100,
		TotalCents:   256,
		OccurredAt:   time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}

	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var parsed EntryEvent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.AmountCents != ev.AmountCents {
		t.Errorf("parsed AmountCents = %v, want %v", parsed.AmountCents, ev.AmountCents)
	}
	if parsed.TriggerLabel != ev.TriggerLabel {
		t.Errorf("parsed TriggerLabel = %v, want %v", parsed.TriggerLabel, ev.TriggerLabel)
	}
	if !parsed.OccurredAt.Equal(ev.OccurredAt) {
		t.Errorf("parsed OccurredAt = %v, want %v", parsed.OccurredAt, ev.OccurredAt)
	}
}

func TestNewReportEvent(t *testing.T) {
	ev := NewReportEvent(661, "31.08.2026")

	if ev.TotalCents != 661 {
		t.Errorf("TotalCents = %v, want 661", ev.TotalCents)
	}
	if ev.Date != "31.08.2026" {
		t.Errorf("Date = %v", ev.Date)
	}
	if ev.SentAt.IsZero() {
		t.Error("SentAt should not be zero")
	}
	if time.Since(ev.SentAt) > time.Second {
		t.Error("SentAt should be recent")
	}
}
