// ABOUTME: Tests for calendar helpers and WeekdaySet.
// ABOUTME: Covers ISO day arithmetic across DST, Monday-start weeks and legacy letter parsing.
package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestWeekdayCode(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-06-02", "D"}, // Sunday
		{"2024-06-03", "S"},
		{"2024-06-04", "T"},
		{"2024-06-05", "Q"},
		{"2024-06-06", "Q"},
		{"2024-06-07", "S"},
		{"2024-06-08", "S"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := ParseISODate(tt.date)
			if err != nil {
				t.Fatalf("ParseISODate: %v", err)
			}
			if got := WeekdayCode(d); got != tt.want {
				t.Errorf("WeekdayCode(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestISODateUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	late := time.Date(2024, 3, 10, 23, 30, 0, 0, loc) // already the 11th in UTC
	if got := ISODate(late); got != "2024-03-10" {
		t.Errorf("ISODate = %s, want 2024-03-10", got)
	}
}

func TestMidnight(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	got := Midnight(time.Date(2024, 1, 5, 17, 45, 12, 99, loc))
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("Midnight = %v, want %v", got, want)
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"2024-03-01", -1, "2024-02-29"},
		{"2024-12-31", 1, "2025-01-01"},
		{"2024-03-09", 2, "2024-03-11"}, // spans US DST start
		{"2024-11-02", 2, "2024-11-04"}, // spans US DST end
		{"garbage", 3, "garbage"},
	}
	for _, tt := range tests {
		if got := AddDays(tt.in, tt.n); got != tt.want {
			t.Errorf("AddDays(%s, %d) = %s, want %s", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	n, err := DaysBetween("2024-02-27", "2024-03-02")
	if err != nil {
		t.Fatalf("DaysBetween: %v", err)
	}
	if n != 4 {
		t.Errorf("DaysBetween = %d, want 4", n)
	}

	if _, err := DaysBetween("2024-02-30", "2024-03-02"); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2024-06-03", "2024-06-03"}, // Monday
		{"2024-06-05", "2024-06-03"},
		{"2024-06-09", "2024-06-03"}, // Sunday closes the week
		{"2024-06-10", "2024-06-10"},
	}
	for _, tt := range tests {
		d, _ := ParseISODate(tt.day)
		if got := ISODate(WeekStart(d)); got != tt.want {
			t.Errorf("WeekStart(%s) = %s, want %s", tt.day, got, tt.want)
		}
	}
}

func TestLastDays(t *testing.T) {
	d, _ := ParseISODate("2024-03-02")
	got := LastDays(d, 3)
	want := []string{"2024-02-29", "2024-03-01", "2024-03-02"}
	if len(got) != len(want) {
		t.Fatalf("LastDays len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LastDays[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if LastDays(d, 0) != nil {
		t.Error("expected nil for empty window")
	}
}

func TestWeekdaySetOps(t *testing.T) {
	s := NewWeekdaySet(time.Monday, time.Wednesday)
	if !s.Has(time.Monday) || !s.Has(time.Wednesday) || s.Has(time.Thursday) {
		t.Errorf("unexpected membership: %v", s.Days())
	}
	s = s.Toggle(time.Wednesday).Toggle(time.Sunday)
	if s.Has(time.Wednesday) || !s.Has(time.Sunday) {
		t.Errorf("toggle failed: %v", s.Days())
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if got := s.String(); got != "D S · · · · ·" {
		t.Errorf("String = %q", got)
	}
	if EveryDay.Len() != 7 || Weekdays.Len() != 5 {
		t.Error("unexpected constant sets")
	}
}

func TestParseWeekdayCodesExpandsSharedLetters(t *testing.T) {
	got, err := ParseWeekdayCodes([]string{"S"})
	if err != nil {
		t.Fatalf("ParseWeekdayCodes: %v", err)
	}
	want := NewWeekdaySet(time.Monday, time.Friday, time.Saturday)
	if got != want {
		t.Errorf("S expanded to %v, want %v", got.Days(), want.Days())
	}

	got, err = ParseWeekdayCodes([]string{"D"})
	if err != nil {
		t.Fatalf("ParseWeekdayCodes: %v", err)
	}
	if got != NewWeekdaySet(time.Sunday) {
		t.Errorf("D expanded to %v", got.Days())
	}

	if _, err := ParseWeekdayCodes([]string{"X"}); err == nil {
		t.Error("expected error for unknown code")
	}
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		in      string
		want    WeekdaySet
		wantErr bool
	}{
		{"seg,qua,sex", NewWeekdaySet(time.Monday, time.Wednesday, time.Friday), false},
		{"mon, thursday", NewWeekdaySet(time.Monday, time.Thursday), false},
		{"0,6", NewWeekdaySet(time.Sunday, time.Saturday), false},
		{"all", EveryDay, false},
		{"weekdays", Weekdays, false},
		{"7", 0, true},
		{"funday", 0, true},
		{"", 0, true},
		{",", 0, true},
		{" , ,", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekdays(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWeekdays: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseWeekdays(%q) = %v, want %v", tt.in, got.Days(), tt.want.Days())
			}
		})
	}
}

func TestWeekdaySetJSON(t *testing.T) {
	s := NewWeekdaySet(time.Sunday, time.Tuesday)
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "[0,2]" {
		t.Errorf("Marshal = %s, want [0,2]", data)
	}

	var legacy WeekdaySet
	if err := json.Unmarshal([]byte(`["T","D"]`), &legacy); err != nil {
		t.Fatalf("Unmarshal legacy: %v", err)
	}
	if legacy != s {
		t.Errorf("legacy decode = %v, want %v", legacy.Days(), s.Days())
	}

	var bad WeekdaySet
	if err := json.Unmarshal([]byte(`[9]`), &bad); err == nil {
		t.Error("expected range error")
	}
}

func TestWeekdaySetYAML(t *testing.T) {
	type wrapper struct {
		Days WeekdaySet `yaml:"days"`
	}
	in := wrapper{Days: NewWeekdaySet(time.Monday, time.Friday)}
	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out wrapper
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Days != in.Days {
		t.Errorf("YAML decode = %v, want %v", out.Days.Days(), in.Days.Days())
	}
}

func TestSortDates(t *testing.T) {
	got := SortDates([]string{"2024-01-03", "2024-01-01", "2024-01-03", "2024-01-02"})
	want := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	if len(got) != len(want) {
		t.Fatalf("SortDates = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortDates[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
