package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circadian/internal/circadian"
	"circadian/internal/clock"
)

var now = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func schedule() circadian.Schedule {
	return circadian.ComputeSchedule(circadian.Settings{WakeTime: clock.MustParse("08:00"), SleepGoalHours: 9})
}

func kinds(p *Plan) []Kind {
	out := make([]Kind, 0, len(p.Reminders))
	for _, r := range p.Reminders {
		out = append(out, r.Kind)
	}
	return out
}

func TestBuildWithoutShift(t *testing.T) {
	p, err := Build(Input{Schedule: schedule(), Now: now})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindGetLight, KindAvoidLight, KindSleep}, kinds(p))

	light := p.Reminders[0]
	assert.Equal(t, "0 8 * * *", light.Spec)
	assert.Equal(t, Title, light.Title)
	assert.Equal(t, "Time to get some light!☀️", light.Message)
	assert.NotEmpty(t, light.ID)
	assert.Equal(t, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), light.Next, "08:00 already passed today")

	avoid := p.Reminders[1]
	assert.Equal(t, time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC), avoid.Next)

	sleep := p.Reminders[2]
	assert.Equal(t, clock.MustParse("23:00"), sleep.At)
	assert.Zero(t, p.MorningCount)
	assert.Nil(t, p.NightIssued)
}

func TestBuildWithShiftSuppressesSleepReminder(t *testing.T) {
	shift := circadian.ComputeShift(clock.MustParse("06:30"), 8)
	p, err := Build(Input{Schedule: schedule(), Shift: &shift, Now: now})
	require.NoError(t, err)

	assert.Equal(t, []Kind{KindGetLight, KindAvoidLight, KindShiftMorning, KindShiftNight}, kinds(p))
	assert.Equal(t, "30 22 * * *", p.Reminders[3].Spec)
	assert.Equal(t, 1, p.MorningCount)
	assert.Equal(t, 1, p.NightCount)
	require.NotNil(t, p.NightIssued)
	assert.Equal(t, now, *p.NightIssued)
}

func TestBuildShiftRemindersStopAfterThree(t *testing.T) {
	shift := circadian.ComputeShift(clock.MustParse("06:30"), 8)
	yesterday := now.AddDate(0, 0, -1)
	p, err := Build(Input{
		Schedule:     schedule(),
		Shift:        &shift,
		MorningCount: MaxShiftReminders,
		NightCount:   MaxShiftReminders,
		NightIssued:  &yesterday,
		Now:          now,
	})
	require.NoError(t, err)

	assert.Equal(t, []Kind{KindGetLight, KindAvoidLight, KindSleep}, kinds(p))
	assert.Equal(t, MaxShiftReminders, p.MorningCount)
	assert.Equal(t, yesterday, *p.NightIssued)
}

func TestBuildNightIssuedTodaySkipsSleep(t *testing.T) {
	earlier := now.Add(-time.Hour)
	p, err := Build(Input{Schedule: schedule(), NightCount: MaxShiftReminders, NightIssued: &earlier, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindGetLight, KindAvoidLight}, kinds(p))
}

func TestRefreshKeepsSetAndMovesNext(t *testing.T) {
	shift := circadian.ComputeShift(clock.MustParse("06:30"), 8)
	p, err := Build(Input{Schedule: schedule(), Shift: &shift, Now: now})
	require.NoError(t, err)

	later := now.AddDate(0, 0, 2)
	rs, err := Refresh(p.Reminders, later)
	require.NoError(t, err)
	require.Len(t, rs, len(p.Reminders))
	for i, r := range rs {
		assert.Equal(t, p.Reminders[i].ID, r.ID)
		assert.Equal(t, p.Reminders[i].Kind, r.Kind)
		assert.True(t, r.Next.After(later), r.Kind)
	}
	assert.Equal(t, time.Date(2024, 3, 11, 20, 0, 0, 0, time.UTC), rs[1].Next)
	assert.Equal(t, time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC), p.Reminders[1].Next, "input is not modified")

	_, err = Refresh([]Reminder{{Spec: "bogus"}}, now)
	assert.Error(t, err)
}

func TestDailySpec(t *testing.T) {
	assert.Equal(t, "5 0 * * *", DailySpec(clock.MustParse("00:05")))
	assert.Equal(t, "59 23 * * *", DailySpec(clock.MustParse("23:59")))
}

func TestSameDay(t *testing.T) {
	assert.True(t, sameDay(now.Add(-9*time.Hour), now))
	assert.False(t, sameDay(now.Add(-11*time.Hour), now))
}
