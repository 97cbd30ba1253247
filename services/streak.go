package services

import (
	"math"
	"time"
)

// Daily check-in rewards.
const (
	xpConsecutiveDay = 50
	xpComeback       = 10
)

// CheckInResult is the outcome of applying a daily check-in. LastActive is
// the value to persist and advances on every branch, same-day no-op included.
type CheckInResult struct {
	Streak     int
	XP         int
	Level      int
	LeveledUp  bool
	LastActive time.Time
	Message    string
}

// LevelForXP maps accumulated XP to a level: floor(sqrt(xp/100)) + 1.
// 0 XP is level 1, 100 XP is level 2, 400 XP is level 3.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// calendarDaysBetween counts full calendar-day boundaries crossed between two
// instants. Both are truncated to midnight UTC so the result is the same
// regardless of the server's local timezone.
func calendarDaysBetween(earlier, later time.Time) int {
	e := earlier.UTC().Truncate(24 * time.Hour)
	l := later.UTC().Truncate(24 * time.Hour)
	return int(l.Sub(e).Hours() / 24)
}

// ApplyCheckIn runs the streak/level decision for one check-in. It is a pure
// function of the stored fields and "now"; the caller persists the result
// in a single write.
func ApplyCheckIn(streak, xp, level int, lastActive, now time.Time) CheckInResult {
	message := "Streak updated"

	switch days := calendarDaysBetween(lastActive, now); {
	case days == 1:
		// Consecutive day
		streak++
		xp += xpConsecutiveDay
	case days > 1:
		// Missed at least one day, streak starts over
		streak = 1
		xp += xpComeback
	default:
		message = "Already checked in today"
	}

	newLevel := LevelForXP(xp)
	leveledUp := newLevel > level
	if leveledUp {
		level = newLevel
	}

	return CheckInResult{
		Streak:     streak,
		XP:         xp,
		Level:      level,
		LeveledUp:  leveledUp,
		LastActive: now,
		Message:    message,
	}
}
