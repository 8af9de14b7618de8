// Package analytics defines the time-window filter and the dashboard report
// payloads produced by the reporting side of the engine.
package analytics

import "time"

// Filter names the supported time windows.
type Filter string

const (
	FilterToday  Filter = "today"
	Filter7Days  Filter = "7days"
	Filter30Days Filter = "30days"
	FilterAll    Filter = "all"
	FilterCustom Filter = "custom"
)

// Window is an inclusive [Start, End] instant range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ResolveWindow turns a named filter plus optional custom bounds into an
// inclusive instant range, evaluated against now in now's location.
//   - today:   local midnight .. 23:59:59.999 of the current day
//   - 7days / 30days: local midnight N days ago .. now's day-end
//   - custom:  start date at 00:00:00.000 .. end date at 23:59:59.999; a
//     missing bound falls back to today's bounds
//   - all (and any unknown name): the epoch .. now's day-end
func ResolveWindow(filter Filter, customStart, customEnd *time.Time, now time.Time) Window {
	switch filter {
	case FilterToday:
		return Window{Start: dayStart(now), End: dayEnd(now)}
	case Filter7Days:
		return Window{Start: dayStart(now.AddDate(0, 0, -7)), End: dayEnd(now)}
	case Filter30Days:
		return Window{Start: dayStart(now.AddDate(0, 0, -30)), End: dayEnd(now)}
	case FilterCustom:
		if customStart == nil || customEnd == nil {
			return Window{Start: dayStart(now), End: dayEnd(now)}
		}
		return Window{Start: dayStart(*customStart), End: dayEnd(*customEnd)}
	default:
		return Window{Start: time.Unix(0, 0), End: dayEnd(now)}
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999000000, t.Location())
}
