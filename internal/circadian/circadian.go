// Package circadian derives the daily light and sleep schedule from a wake time.
//
// Everything here is a pure function of its arguments: no clocks, no storage,
// no logging. Callers persist settings and pass them in on every call.
package circadian

import (
	"circadian/internal/clock"
)

const (
	MinSleepGoal     = 6
	MaxSleepGoal     = 10
	DefaultSleepGoal = 8
)

// Fixed offsets, in hours.
const (
	tempMinBeforeWake   = 2
	tempMaxAfterTempMin = 14
	lightStartAfterMin  = 2
	lightEndAfterMin    = 6
)

// Settings is everything the calculator needs. Overrides, when non-nil,
// replace the derived default outright.
type Settings struct {
	WakeTime       clock.TimeOfDay
	SleepGoalHours int

	GetLightStart   *clock.TimeOfDay
	AvoidLightStart *clock.TimeOfDay
	SleepStart      *clock.TimeOfDay
}

type Schedule struct {
	TemperatureMinimum clock.TimeOfDay `json:"temperature_minimum"`
	TemperatureMaximum clock.TimeOfDay `json:"temperature_maximum"`
	GetLightStart      clock.TimeOfDay `json:"get_light_start"`
	GetLightEnd        clock.TimeOfDay `json:"get_light_end"`
	DeadzoneStart      clock.TimeOfDay `json:"deadzone_start"`
	AvoidLightStart    clock.TimeOfDay `json:"avoid_light_start"`
	AvoidLightEnd      clock.TimeOfDay `json:"avoid_light_end"`
	SleepStart         clock.TimeOfDay `json:"sleep_start"`
	SleepEnd           clock.TimeOfDay `json:"sleep_end"`
}

// ComputeSchedule applies the fixed offsets to s. The sleep goal is assumed
// to be in range; callers validate it.
func ComputeSchedule(s Settings) Schedule {
	wake := s.WakeTime
	tempMin := wake.AddHours(-tempMinBeforeWake)
	tempMax := tempMin.AddHours(tempMaxAfterTempMin)

	getLightStart := tempMin.AddHours(lightStartAfterMin)
	if s.GetLightStart != nil {
		getLightStart = *s.GetLightStart
	}
	getLightEnd := tempMin.AddHours(lightEndAfterMin)

	avoidLightStart := tempMax
	if s.AvoidLightStart != nil {
		avoidLightStart = *s.AvoidLightStart
	}

	sleepStart := wake.AddHours(-s.SleepGoalHours)
	if s.SleepStart != nil {
		sleepStart = *s.SleepStart
	}

	return Schedule{
		TemperatureMinimum: tempMin,
		TemperatureMaximum: tempMax,
		GetLightStart:      getLightStart,
		GetLightEnd:        getLightEnd,
		DeadzoneStart:      getLightEnd,
		AvoidLightStart:    avoidLightStart,
		AvoidLightEnd:      sleepStart,
		SleepStart:         sleepStart,
		SleepEnd:           wake,
	}
}

type ShiftPlan struct {
	Bedtime  clock.TimeOfDay `json:"bedtime"`
	WakeTime clock.TimeOfDay `json:"wake_time"`
}

// ComputeShift returns the bedtime that yields sleepGoalHours of sleep before
// desiredWake.
func ComputeShift(desiredWake clock.TimeOfDay, sleepGoalHours int) ShiftPlan {
	return ShiftPlan{
		Bedtime:  desiredWake.AddHours(-sleepGoalHours),
		WakeTime: desiredWake,
	}
}

// ValidSleepGoal reports whether h is a selectable sleep goal.
func ValidSleepGoal(h int) bool {
	return h >= MinSleepGoal && h <= MaxSleepGoal
}
