// Package reminder builds the set of daily reminders for a schedule. It does
// not deliver anything; callers hand the plan to whatever notifier they use.
package reminder

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"circadian/internal/circadian"
	"circadian/internal/clock"
)

// MaxShiftReminders is how many times each shift reminder is issued.
const MaxShiftReminders = 3

type Kind string

const (
	KindGetLight     Kind = "get_light"
	KindAvoidLight   Kind = "avoid_light"
	KindSleep        Kind = "sleep"
	KindShiftMorning Kind = "shift_morning"
	KindShiftNight   Kind = "shift_night"
)

var messages = map[Kind]string{
	KindGetLight:     "Time to get some light!☀️",
	KindAvoidLight:   "Time to start reducing your light intake!🌒",
	KindSleep:        "Time to get some sleep!😴",
	KindShiftMorning: "Morning! Get some bright light in the next 30 minutes to shift your Circadian Rhythm!☀️",
	KindShiftNight:   "Get to bed early tonight to shift your Circadian Rhythm!😴",
}

const Title = "Circadian Health"

type Reminder struct {
	ID      string          `json:"id"`
	Kind    Kind            `json:"kind"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
	At      clock.TimeOfDay `json:"at"`
	Spec    string          `json:"cron"`
	Next    time.Time       `json:"next"`
}

// Input carries the schedule plus the shift-reminder bookkeeping the caller
// persists between plans.
type Input struct {
	Schedule circadian.Schedule
	Shift    *circadian.ShiftPlan

	MorningCount int
	NightCount   int
	NightIssued  *time.Time

	Now time.Time
}

// Plan is the reminder set and the bookkeeping to persist afterwards.
type Plan struct {
	Reminders []Reminder `json:"reminders"`

	MorningCount int        `json:"morning_count"`
	NightCount   int        `json:"night_count"`
	NightIssued  *time.Time `json:"night_issued,omitempty"`
}

// Build arms a fresh set after a settings change, replacing the previous one.
// Shift reminders count as issued each time they are armed, and the plain
// sleep reminder is dropped on a day the shift night reminder went out.
// Callers listing what is already armed use Refresh instead.
func Build(in Input) (*Plan, error) {
	p := &Plan{
		MorningCount: in.MorningCount,
		NightCount:   in.NightCount,
		NightIssued:  in.NightIssued,
	}

	add := func(k Kind, at clock.TimeOfDay) error {
		r, err := newReminder(k, at, in.Now)
		if err != nil {
			return err
		}
		p.Reminders = append(p.Reminders, r)
		return nil
	}

	if err := add(KindGetLight, in.Schedule.GetLightStart); err != nil {
		return nil, err
	}
	if err := add(KindAvoidLight, in.Schedule.AvoidLightStart); err != nil {
		return nil, err
	}

	if in.Shift != nil {
		if p.MorningCount < MaxShiftReminders {
			if err := add(KindShiftMorning, in.Shift.WakeTime); err != nil {
				return nil, err
			}
			p.MorningCount++
		}
		if p.NightCount < MaxShiftReminders {
			if err := add(KindShiftNight, in.Shift.Bedtime); err != nil {
				return nil, err
			}
			p.NightCount++
			now := in.Now
			p.NightIssued = &now
		}
	}

	if p.NightIssued == nil || !sameDay(*p.NightIssued, in.Now) {
		if err := add(KindSleep, in.Schedule.SleepStart); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// DailySpec is the standard cron expression firing every day at t.
func DailySpec(t clock.TimeOfDay) string {
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
}

// Refresh returns a copy of an armed set with Next recomputed from now.
func Refresh(rs []Reminder, now time.Time) ([]Reminder, error) {
	out := make([]Reminder, len(rs))
	for i, r := range rs {
		next, err := nextFire(r.Spec, now)
		if err != nil {
			return nil, err
		}
		r.Next = next
		out[i] = r
	}
	return out, nil
}

func newReminder(k Kind, at clock.TimeOfDay, now time.Time) (Reminder, error) {
	spec := DailySpec(at)
	next, err := nextFire(spec, now)
	if err != nil {
		return Reminder{}, err
	}
	return Reminder{
		ID:      uuid.NewString(),
		Kind:    k,
		Title:   Title,
		Message: messages[k],
		At:      at,
		Spec:    spec,
		Next:    next,
	}, nil
}

func nextFire(spec string, now time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("reminder: parse %q: %w", spec, err)
	}
	// Fire on the caller's wall clock, not the process's.
	if ss, ok := sched.(*cron.SpecSchedule); ok {
		ss.Location = now.Location()
	}
	return sched.Next(now), nil
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
