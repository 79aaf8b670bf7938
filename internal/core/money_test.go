package core

import (
	"testing"
	"time"
)

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents int64
		out   string
	}{
		{0, "0,00"},
		{256, "2,56"},
		{661, "6,61"},
		{289, "2,89"},
		{100, "1,00"},
		{5, "0,05"},
		{123456, "1234,56"},
		{-256, "-2,56"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format(); got != tc.out {
			t.Errorf("Format(%d) = %q, want %q", tc.cents, got, tc.out)
		}
	}
}

func TestMoneyAdd(t *testing.T) {
	got := Money{Cents: 256}.Add(Money{Cents: 405})
	if got.Cents != 661 {
		t.Fatalf("Add = %d cents, want 661", got.Cents)
	}
}

func TestFormatStamp(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		t.Fatal(err)
	}
	// 12:34 UTC is 13:34 in Vienna (CET, winter).
	ts := time.Date(2026, 1, 15, 12, 34, 0, 0, time.UTC)
	if got := FormatStamp(ts, loc); got != "13:34, 15.01.2026" {
		t.Errorf("FormatStamp = %q", got)
	}
	if got := FormatStamp(ts, nil); got != "12:34, 15.01.2026" {
		t.Errorf("FormatStamp(nil loc) = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, 8, 31, 22, 5, 0, 0, time.UTC)
	if got := FormatDate(ts, nil); got != "31.08.2026" {
		t.Errorf("FormatDate = %q", got)
	}
}
