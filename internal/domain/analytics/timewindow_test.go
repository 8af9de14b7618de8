package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func TestResolveWindowToday(t *testing.T) {
	w := ResolveWindow(FilterToday, nil, nil, testNow)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, 999000000, time.UTC), w.End)
}

func TestResolveWindowRelativeRanges(t *testing.T) {
	w7 := ResolveWindow(Filter7Days, nil, nil, testNow)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), w7.Start)
	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, 999000000, time.UTC), w7.End)

	w30 := ResolveWindow(Filter30Days, nil, nil, testNow)
	assert.Equal(t, time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC), w30.Start)
	assert.Equal(t, w7.End, w30.End)
}

func TestResolveWindowAll(t *testing.T) {
	w := ResolveWindow(FilterAll, nil, nil, testNow)

	assert.Equal(t, time.Unix(0, 0), w.Start)
	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, 999000000, time.UTC), w.End)
}

func TestResolveWindowUnknownFilterFallsBackToAll(t *testing.T) {
	assert.Equal(t, ResolveWindow(FilterAll, nil, nil, testNow), ResolveWindow(Filter("bogus"), nil, nil, testNow))
}

func TestResolveWindowCustom(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	w := ResolveWindow(FilterCustom, &start, &end, testNow)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 6, 10, 23, 59, 59, 999000000, time.UTC), w.End)
}

func TestResolveWindowCustomMissingBoundFallsBackToToday(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	today := ResolveWindow(FilterToday, nil, nil, testNow)

	assert.Equal(t, today, ResolveWindow(FilterCustom, &start, nil, testNow))
	assert.Equal(t, today, ResolveWindow(FilterCustom, nil, &start, testNow))
	assert.Equal(t, today, ResolveWindow(FilterCustom, nil, nil, testNow))
}

func TestWindowContainsIsInclusive(t *testing.T) {
	w := ResolveWindow(FilterToday, nil, nil, testNow)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.True(t, w.Contains(testNow))
	assert.False(t, w.Contains(w.Start.Add(-time.Millisecond)))
	assert.False(t, w.Contains(w.End.Add(time.Millisecond)))
}

// Each named window must contain everything the narrower ones contain.
func TestWindowNesting(t *testing.T) {
	today := ResolveWindow(FilterToday, nil, nil, testNow)
	week := ResolveWindow(Filter7Days, nil, nil, testNow)
	month := ResolveWindow(Filter30Days, nil, nil, testNow)
	all := ResolveWindow(FilterAll, nil, nil, testNow)

	samples := []time.Time{
		testNow,
		today.Start,
		today.End,
		testNow.AddDate(0, 0, -3),
		testNow.AddDate(0, 0, -20),
		testNow.AddDate(-1, 0, 0),
	}

	for _, sample := range samples {
		if today.Contains(sample) {
			assert.True(t, week.Contains(sample), "7days should contain %v", sample)
		}
		if week.Contains(sample) {
			assert.True(t, month.Contains(sample), "30days should contain %v", sample)
		}
		if month.Contains(sample) {
			assert.True(t, all.Contains(sample), "all should contain %v", sample)
		}
	}
}
