package sheets

import (
	"context"
	"testing"
	"time"

	"kassa/internal/core"
)

func TestEntryRow(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	e := core.Entry{
		Amount:     core.Money{Cents: 405},
		Label:      "+ мк синяя",
		ChatTitle:  "Пекарня",
		ChatID:     -1002079167705,
		OccurredAt: time.Date(2026, 8, 31, 12, 30, 0, 0, time.UTC),
	}

	row := entryRow(e, loc)
	if len(row) != 5 {
		t.Fatalf("entryRow returned %d columns, want 5", len(row))
	}
	if row[0] != "31.08.2026" {
		t.Errorf("date column = %v, want 31.08.2026", row[0])
	}
	// UTC 12:30 is 14:30 in Vienna during DST.
	if row[1] != "14:30" {
		t.Errorf("time column = %v, want 14:30", row[1])
	}
	if row[2] != "Пекарня" {
		t.Errorf("chat title column = %v", row[2])
	}
	if row[3] != "+ мк синяя" {
		t.Errorf("label column = %v", row[3])
	}
	if row[4] != 4.05 {
		t.Errorf("amount column = %v, want 4.05", row[4])
	}
}

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewClient(ctx, "", "Ledger", time.UTC); err == nil {
		t.Error("NewClient should fail without a spreadsheet ID")
	}
	if _, err := NewClient(ctx, "abc123", "", time.UTC); err == nil {
		t.Error("NewClient should fail without a sheet name")
	}
}
