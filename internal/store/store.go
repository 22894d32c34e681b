// Package store persists the user's circadian settings between sessions.
package store

import (
	"context"
	"errors"
	"time"

	"circadian/internal/circadian"
	"circadian/internal/clock"
	"circadian/internal/reminder"
)

var ErrUnknownBackend = errors.New("store: unknown backend")

// State is everything the app remembers about a user.
type State struct {
	WakeTime       *clock.TimeOfDay `json:"wake_time,omitempty"`
	SleepGoalHours int              `json:"sleep_goal_hours,omitempty"` // 0 until chosen

	GetLightStart   *clock.TimeOfDay `json:"get_light_start,omitempty"`
	AvoidLightStart *clock.TimeOfDay `json:"avoid_light_start,omitempty"`
	SleepStart      *clock.TimeOfDay `json:"sleep_start,omitempty"`

	Shift *circadian.ShiftPlan `json:"shift,omitempty"`

	LastLoggedDate       string     `json:"last_logged_date,omitempty"` // 2006-01-02
	MorningReminderCount int        `json:"morning_reminder_count"`
	NightReminderCount   int        `json:"night_reminder_count"`
	NightReminderIssued  *time.Time `json:"night_reminder_issued,omitempty"`

	// Reminders armed at the last settings change.
	Reminders []reminder.Reminder `json:"reminders,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	// Load returns an empty State when nothing has been saved yet.
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
	Clear(ctx context.Context) error
	Close() error
}
