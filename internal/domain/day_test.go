package domain

import (
	"testing"
	"time"
)

func TestDayOfOffsets(t *testing.T) {
	// 23:30 UTC on June 1.
	late := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	// 00:30 UTC on June 2.
	early := time.Date(2024, 6, 2, 0, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		t      time.Time
		offset int
		want   Day
	}{
		{"utc late evening", late, 0, "2024-06-01"},
		{"east of utc rolls forward", late, 60, "2024-06-02"},
		{"utc early morning", early, 0, "2024-06-02"},
		{"west of utc rolls back", early, -60, "2024-06-01"},
		{"india half-hour offset", late, 330, "2024-06-02"},
	}
	for _, tc := range cases {
		if got := DayOf(tc.t, tc.offset); got != tc.want {
			t.Errorf("%s: DayOf(%v, %d) = %s, want %s", tc.name, tc.t, tc.offset, got, tc.want)
		}
	}
}

func TestDayOfNormalizesZone(t *testing.T) {
	zone := time.FixedZone("CEST", 2*60*60)
	// 01:30 CEST on June 2 is 23:30 UTC on June 1.
	local := time.Date(2024, 6, 2, 1, 30, 0, 0, zone)
	if got := DayOf(local, 0); got != "2024-06-01" {
		t.Fatalf("DayOf did not normalize to UTC: %s", got)
	}
}

func TestDayArithmetic(t *testing.T) {
	d := Day("2024-02-28")
	if next := d.Next(); next != "2024-02-29" {
		t.Fatalf("expected leap day, got %s", next)
	}
	if got := d.AddDays(2); got != "2024-03-01" {
		t.Fatalf("expected month rollover, got %s", got)
	}
	if prev := Day("2024-01-01").Prev(); prev != "2023-12-31" {
		t.Fatalf("expected year rollover, got %s", prev)
	}
}

func TestDayOrdering(t *testing.T) {
	if !Day("2024-06-01").Before("2024-06-02") {
		t.Fatal("Before failed")
	}
	if !Day("2024-06-02").After("2024-06-01") {
		t.Fatal("After failed")
	}
	if Day("2024-06-01").Before("2024-06-01") {
		t.Fatal("Before is not strict")
	}
	if !Day("").IsZero() {
		t.Fatal("empty day should be zero")
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	if _, err := ParseDay("junk"); err == nil {
		t.Fatal("expected parse error")
	}
	d, err := ParseDay("2024-06-15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != "2024-06-15" {
		t.Fatalf("unexpected day %s", d)
	}
}
