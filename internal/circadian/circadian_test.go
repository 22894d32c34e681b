package circadian

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circadian/internal/clock"
)

func at(s string) clock.TimeOfDay { return clock.MustParse(s) }

func ptr(t clock.TimeOfDay) *clock.TimeOfDay { return &t }

func TestComputeScheduleMidnightWrap(t *testing.T) {
	s := ComputeSchedule(Settings{WakeTime: at("08:00"), SleepGoalHours: 9})

	assert.Equal(t, at("06:00"), s.TemperatureMinimum)
	assert.Equal(t, at("20:00"), s.TemperatureMaximum)
	assert.Equal(t, at("08:00"), s.GetLightStart)
	assert.Equal(t, at("12:00"), s.GetLightEnd)
	assert.Equal(t, at("12:00"), s.DeadzoneStart)
	assert.Equal(t, at("20:00"), s.AvoidLightStart)
	assert.Equal(t, at("23:00"), s.AvoidLightEnd)
	assert.Equal(t, at("23:00"), s.SleepStart)
	assert.Equal(t, at("08:00"), s.SleepEnd)
}

func TestComputeScheduleEarlyWake(t *testing.T) {
	s := ComputeSchedule(Settings{WakeTime: at("01:30"), SleepGoalHours: DefaultSleepGoal})

	assert.Equal(t, at("23:30"), s.TemperatureMinimum)
	assert.Equal(t, at("13:30"), s.TemperatureMaximum)
	assert.Equal(t, at("01:30"), s.GetLightStart)
	assert.Equal(t, at("05:30"), s.GetLightEnd)
	assert.Equal(t, at("17:30"), s.SleepStart)
}

func TestComputeScheduleInvariants(t *testing.T) {
	for m := 0; m < clock.MinutesPerDay; m += 7 {
		wake := clock.FromMinutes(m)
		for g := MinSleepGoal; g <= MaxSleepGoal; g++ {
			s := ComputeSchedule(Settings{WakeTime: wake, SleepGoalHours: g})

			require.Equal(t, wake, s.SleepEnd)
			require.Equal(t, time.Duration(g)*time.Hour, s.SleepStart.Until(wake))
			require.Equal(t, s.TemperatureMinimum.AddHours(14), s.TemperatureMaximum)
			require.Equal(t, s.GetLightEnd, s.DeadzoneStart)
			require.Equal(t, s.SleepStart, s.AvoidLightEnd)
		}
	}
}

func TestComputeScheduleIsIdempotent(t *testing.T) {
	in := Settings{WakeTime: at("06:45"), SleepGoalHours: 7, AvoidLightStart: ptr(at("19:00"))}
	assert.Equal(t, ComputeSchedule(in), ComputeSchedule(in))
}

func TestComputeScheduleOverrides(t *testing.T) {
	base := Settings{WakeTime: at("08:00"), SleepGoalHours: 8}

	s := ComputeSchedule(Settings{WakeTime: base.WakeTime, SleepGoalHours: 8, GetLightStart: ptr(at("07:15"))})
	assert.Equal(t, at("07:15"), s.GetLightStart)
	assert.Equal(t, at("12:00"), s.GetLightEnd, "override does not move the end")

	s = ComputeSchedule(Settings{WakeTime: base.WakeTime, SleepGoalHours: 8, AvoidLightStart: ptr(at("18:45"))})
	assert.Equal(t, at("18:45"), s.AvoidLightStart)
	assert.Equal(t, at("20:00"), s.TemperatureMaximum)

	s = ComputeSchedule(Settings{WakeTime: base.WakeTime, SleepGoalHours: 8, SleepStart: ptr(at("22:15"))})
	assert.Equal(t, at("22:15"), s.SleepStart)
	assert.Equal(t, at("22:15"), s.AvoidLightEnd)
	assert.Equal(t, at("08:00"), s.SleepEnd)
}

func TestComputeShift(t *testing.T) {
	p := ComputeShift(at("06:30"), 8)
	assert.Equal(t, at("22:30"), p.Bedtime)
	assert.Equal(t, at("06:30"), p.WakeTime)

	p = ComputeShift(at("14:00"), 6)
	assert.Equal(t, at("08:00"), p.Bedtime)
}

func TestValidSleepGoal(t *testing.T) {
	assert.False(t, ValidSleepGoal(5))
	assert.True(t, ValidSleepGoal(6))
	assert.True(t, ValidSleepGoal(10))
	assert.False(t, ValidSleepGoal(11))
}
