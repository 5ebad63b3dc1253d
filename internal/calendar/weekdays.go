// ABOUTME: WeekdaySet is the unambiguous frequency representation for activities.
// ABOUTME: Stored as a bit set; letters are derived only for display.
package calendar

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WeekdaySet is a set of weekdays, bit i set meaning time.Weekday(i) is included.
type WeekdaySet uint8

// EveryDay includes all seven weekdays.
const EveryDay WeekdaySet = 0x7f

// Weekdays is Monday through Friday, the default for new activities.
const Weekdays WeekdaySet = 1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday

// NewWeekdaySet builds a set from the given weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<(uint(d)%7)) != 0
}

// Add returns the set with d included.
func (s WeekdaySet) Add(d time.Weekday) WeekdaySet {
	return s | 1<<(uint(d)%7)
}

// Remove returns the set with d excluded.
func (s WeekdaySet) Remove(d time.Weekday) WeekdaySet {
	return s &^ (1 << (uint(d) % 7))
}

// Toggle flips membership of d.
func (s WeekdaySet) Toggle(d time.Weekday) WeekdaySet {
	if s.Has(d) {
		return s.Remove(d)
	}
	return s.Add(d)
}

// Days lists the weekdays in the set, Sunday first.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Len returns the number of weekdays in the set.
func (s WeekdaySet) Len() int {
	return len(s.Days())
}

// Codes renders the set as display letters, Sunday first.
func (s WeekdaySet) Codes() []string {
	days := s.Days()
	codes := make([]string, len(days))
	for i, d := range days {
		codes[i] = CodeFor(d)
	}
	return codes
}

// String renders a seven-slot strip like "D S T Q Q S S" with dots for absent days.
func (s WeekdaySet) String() string {
	parts := make([]string, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			parts[d] = CodeFor(d)
		} else {
			parts[d] = "·"
		}
	}
	return strings.Join(parts, " ")
}

// MarshalJSON encodes the set as a list of weekday indices (Sunday=0).
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	idx := make([]int, 0, 7)
	for _, d := range s.Days() {
		idx = append(idx, int(d))
	}
	return json.Marshal(idx)
}

// UnmarshalJSON accepts weekday indices, or legacy letter codes.
func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var idx []int
	if err := json.Unmarshal(data, &idx); err == nil {
		set, err := fromIndices(idx)
		if err != nil {
			return err
		}
		*s = set
		return nil
	}

	var letters []string
	if err := json.Unmarshal(data, &letters); err != nil {
		return fmt.Errorf("decode weekdays: %w", err)
	}
	set, err := ParseWeekdayCodes(letters)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// MarshalYAML encodes the set as a list of weekday indices.
func (s WeekdaySet) MarshalYAML() (any, error) {
	idx := make([]int, 0, 7)
	for _, d := range s.Days() {
		idx = append(idx, int(d))
	}
	return idx, nil
}

// UnmarshalYAML decodes a list of weekday indices.
func (s *WeekdaySet) UnmarshalYAML(unmarshal func(any) error) error {
	var idx []int
	if err := unmarshal(&idx); err != nil {
		return fmt.Errorf("decode weekdays: %w", err)
	}
	set, err := fromIndices(idx)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

func fromIndices(idx []int) (WeekdaySet, error) {
	var s WeekdaySet
	for _, i := range idx {
		if i < 0 || i > 6 {
			return 0, fmt.Errorf("weekday index out of range: %d", i)
		}
		s = s.Add(time.Weekday(i))
	}
	return s, nil
}

// ParseWeekdayCodes converts legacy single-letter frequency codes.
// Each letter selects every weekday that renders with it, which is how the
// letter-based schedule matched days: "S" selects Monday, Friday and Saturday.
func ParseWeekdayCodes(codes []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		matched := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			if CodeFor(d) == c {
				s = s.Add(d)
				matched = true
			}
		}
		if !matched {
			return 0, fmt.Errorf("unknown weekday code: %q", c)
		}
	}
	return s, nil
}

var weekdayNames = map[string]time.Weekday{
	"dom": time.Sunday, "sun": time.Sunday,
	"seg": time.Monday, "mon": time.Monday,
	"ter": time.Tuesday, "tue": time.Tuesday,
	"qua": time.Wednesday, "wed": time.Wednesday,
	"qui": time.Thursday, "thu": time.Thursday,
	"sex": time.Friday, "fri": time.Friday,
	"sab": time.Saturday, "sáb": time.Saturday, "sat": time.Saturday,
}

// ParseWeekdays parses a comma-separated list of unambiguous day names
// ("seg,qua,sex" or "mon,wed,fri"), indices ("1,3,5"), or the keywords
// "all" and "weekdays".
func ParseWeekdays(s string) (WeekdaySet, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, fmt.Errorf("no weekdays given")
	case "all", "todos", "daily":
		return EveryDay, nil
	case "weekdays", "uteis":
		return Weekdays, nil
	}

	var set WeekdaySet
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 || n > 6 {
				return 0, fmt.Errorf("weekday index out of range: %d", n)
			}
			set = set.Add(time.Weekday(n))
			continue
		}
		key := part
		if len([]rune(key)) > 3 {
			key = string([]rune(key)[:3])
		}
		d, ok := weekdayNames[key]
		if !ok {
			return 0, fmt.Errorf("unknown weekday: %q", part)
		}
		set = set.Add(d)
	}
	if set == 0 {
		return 0, fmt.Errorf("no weekdays given")
	}
	return set, nil
}

// SortDates sorts ISO day strings ascending in place and drops duplicates.
func SortDates(dates []string) []string {
	if len(dates) == 0 {
		return dates
	}
	sort.Strings(dates)
	out := dates[:1]
	for _, d := range dates[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}
