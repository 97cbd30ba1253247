package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{2500, 6},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestApplyCheckInConsecutiveDay(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	lastActive := now.AddDate(0, 0, -1)

	result := ApplyCheckIn(5, 200, 2, lastActive, now)

	assert.Equal(t, 6, result.Streak)
	assert.Equal(t, 250, result.XP)
	assert.Equal(t, 2, result.Level)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, now, result.LastActive)
	assert.Equal(t, "Streak updated", result.Message)
}

func TestApplyCheckInMissedDays(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

	for _, gap := range []int{2, 3, 30} {
		result := ApplyCheckIn(7, 500, 3, now.AddDate(0, 0, -gap), now)
		assert.Equal(t, 1, result.Streak, "gap=%d", gap)
		assert.Equal(t, 510, result.XP, "gap=%d", gap)
	}
}

func TestApplyCheckInSameDay(t *testing.T) {
	now := time.Date(2025, 6, 10, 22, 0, 0, 0, time.UTC)
	lastActive := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)

	result := ApplyCheckIn(4, 180, 2, lastActive, now)

	assert.Equal(t, 4, result.Streak)
	assert.Equal(t, 180, result.XP)
	assert.Equal(t, 2, result.Level)
	assert.Equal(t, "Already checked in today", result.Message)
	// The no-op branch still advances last-active to the check-in time
	assert.Equal(t, now, result.LastActive)
}

func TestApplyCheckInLevelUp(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	lastActive := now.AddDate(0, 0, -1)

	// 60 + 50 crosses the 100 XP boundary
	result := ApplyCheckIn(1, 60, 1, lastActive, now)

	assert.Equal(t, 110, result.XP)
	assert.Equal(t, 2, result.Level)
	assert.True(t, result.LeveledUp)
}

func TestApplyCheckInComebackScenario(t *testing.T) {
	// streak=3, xp=120, last active two days ago:
	// comeback resets the streak, adds 10 XP and lands on level 2
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	lastActive := now.AddDate(0, 0, -2)

	result := ApplyCheckIn(3, 120, 2, lastActive, now)

	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 130, result.XP)
	assert.Equal(t, 2, result.Level)
	assert.False(t, result.LeveledUp)
}

func TestCalendarDaysIgnoreTimeOfDay(t *testing.T) {
	// 23:59 yesterday to 00:01 today is one calendar day apart even though
	// only two minutes elapsed
	lastActive := time.Date(2025, 6, 9, 23, 59, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 0, 1, 0, 0, time.UTC)

	result := ApplyCheckIn(2, 0, 1, lastActive, now)
	assert.Equal(t, 3, result.Streak)
	assert.Equal(t, 50, result.XP)
}
