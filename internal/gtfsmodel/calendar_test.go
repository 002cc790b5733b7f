package gtfsmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunsOn_WeeklyPattern(t *testing.T) {
	// 2026-07-31 is a Friday.
	svc := Service{
		HasWeekly: true,
		WeekBits:  [7]bool{true, true, true, true, true, false, false}, // Mon-Fri
	}
	assert.True(t, RunsOn(svc, 20260731))  // Friday
	assert.False(t, RunsOn(svc, 20260801)) // Saturday
}

func TestRunsOn_ExceptionWinsOverWeekly(t *testing.T) {
	svc := Service{
		HasWeekly:  true,
		WeekBits:   [7]bool{false, false, false, false, false, false, false},
		Exceptions: map[int]ExceptionType{20260801: ExceptionAdded},
	}
	assert.True(t, RunsOn(svc, 20260801)) // Saturday, but added

	svc2 := Service{
		HasWeekly:  true,
		WeekBits:   [7]bool{true, true, true, true, true, true, true},
		Exceptions: map[int]ExceptionType{20260731: ExceptionRemoved},
	}
	assert.False(t, RunsOn(svc2, 20260731)) // Friday, but removed
}

func TestRunsOn_NoWeeklyNoException_AssumedRunning(t *testing.T) {
	svc := Service{}
	assert.True(t, RunsOn(svc, 20260731))
}

func TestRunsOn_NoWeeklyWithException(t *testing.T) {
	svc := Service{
		Exceptions: map[int]ExceptionType{20260731: ExceptionAdded},
	}
	assert.True(t, RunsOn(svc, 20260731))
	assert.True(t, RunsOn(svc, 20260801)) // absent exception: still assumed running
}
