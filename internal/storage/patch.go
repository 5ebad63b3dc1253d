// ABOUTME: Shared UPDATE builder for partial activity updates.
// ABOUTME: Backends supply their placeholder style and list column encoding.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/habito/internal/models"
)

type column struct {
	name  string
	value any
}

// patchColumns lists the columns a patch touches. List columns carry []string
// so each backend can encode them its own way.
func patchColumns(p models.ActivityPatch) []column {
	var cols []column
	if p.Name != nil {
		cols = append(cols, column{"name", *p.Name})
	}
	if p.Category != nil {
		cols = append(cols, column{"category", string(*p.Category)})
	}
	if p.Icon != nil {
		cols = append(cols, column{"icon", *p.Icon})
	}
	if p.Color != nil {
		cols = append(cols, column{"color", *p.Color})
	}
	if p.TimeSlot != nil {
		cols = append(cols, column{"time_slot", *p.TimeSlot})
	}
	if p.Difficulty != nil {
		cols = append(cols, column{"difficulty", string(*p.Difficulty)})
	}
	if p.XP != nil {
		cols = append(cols, column{"xp", *p.XP})
	}
	if p.Frequency != nil {
		cols = append(cols, column{"frequency", int(*p.Frequency)})
	}
	if p.Completed != nil {
		cols = append(cols, column{"completed", *p.Completed})
	}
	if p.Streak != nil {
		cols = append(cols, column{"streak", *p.Streak})
	}
	if p.History != nil {
		cols = append(cols, column{"history", p.History})
	}
	if p.RemindersEnabled != nil {
		cols = append(cols, column{"reminders_enabled", *p.RemindersEnabled})
	}
	if p.ReminderTimes != nil {
		cols = append(cols, column{"reminder_times", p.ReminderTimes})
	}
	return cols
}

// buildUpdate renders an UPDATE for the patch. now is the backend's encoding
// of the update time; the id is the last argument.
func buildUpdate(p models.ActivityPatch, id string, now any, placeholder func(int) string, encodeList func([]string) (any, error)) (string, []any, error) {
	cols := patchColumns(p)
	cols = append(cols, column{"updated_at", now})

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		v := c.value
		if list, ok := v.([]string); ok {
			enc, err := encodeList(list)
			if err != nil {
				return "", nil, fmt.Errorf("encode %s: %w", c.name, err)
			}
			v = enc
		}
		sets = append(sets, c.name+" = "+placeholder(i+1))
		args = append(args, v)
	}
	args = append(args, id)

	query := "UPDATE activities SET " + strings.Join(sets, ", ") + " WHERE id = " + placeholder(len(cols)+1)
	return query, args, nil
}

func questionMark(int) string { return "?" }

func dollar(i int) string { return fmt.Sprintf("$%d", i) }

// jsonList stores a list column as JSON text.
func jsonList(list []string) (any, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// nativeList passes a list column through for drivers with array support.
func nativeList(list []string) (any, error) {
	if list == nil {
		list = []string{}
	}
	return list, nil
}
