package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"circadian/internal/clock"
	"circadian/internal/reminder"
	"circadian/internal/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func setup(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	repo, err := store.NewFileStore(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
	require.NoError(t, err)
	fc := &fakeClock{t: time.Date(2024, 3, 9, 9, 30, 0, 0, time.UTC)}
	return New(repo, zap.NewNop(), WithClock(fc.Now)), fc
}

func TestPhases(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, NeedsWakeTime, st.Phase)
	assert.Equal(t, 8, st.SleepGoalHours, "default goal is reported")

	_, err = svc.LogWakeTime(ctx, clock.MustParse("07:00"))
	require.NoError(t, err)
	st, _ = svc.Status(ctx)
	assert.Equal(t, NeedsSleepGoal, st.Phase)

	require.NoError(t, svc.SetSleepGoal(ctx, 9))
	st, _ = svc.Status(ctx)
	assert.Equal(t, ShowingSchedule, st.Phase)
	assert.Equal(t, 9, st.SleepGoalHours)

	_, err = svc.RequestShift(ctx, clock.MustParse("06:00"))
	require.NoError(t, err)
	st, _ = svc.Status(ctx)
	assert.Equal(t, ShiftRequested, st.Phase)

	require.NoError(t, svc.Reset(ctx))
	st, _ = svc.Status(ctx)
	assert.Equal(t, NeedsWakeTime, st.Phase)
	assert.Nil(t, st.Shift)
}

func TestLogWakeTimeOncePerDay(t *testing.T) {
	ctx := context.Background()
	svc, fc := setup(t)

	sched, err := svc.LogWakeTime(ctx, clock.MustParse("08:00"))
	require.NoError(t, err)
	assert.Equal(t, clock.MustParse("00:00"), sched.SleepStart)

	_, err = svc.LogWakeTime(ctx, clock.MustParse("07:00"))
	assert.ErrorIs(t, err, ErrAlreadyLogged)

	fc.t = fc.t.AddDate(0, 0, 1)
	sched, err = svc.LogWakeTime(ctx, clock.MustParse("07:00"))
	require.NoError(t, err)
	assert.Equal(t, clock.MustParse("07:00"), sched.SleepEnd)
}

func TestSetSleepGoalRejectsOutOfRange(t *testing.T) {
	svc, _ := setup(t)
	for _, h := range []int{0, 5, 11} {
		assert.ErrorIs(t, svc.SetSleepGoal(context.Background(), h), ErrInvalidSleepGoal, h)
	}
}

func TestScheduleFallsBackToNow(t *testing.T) {
	svc, _ := setup(t)
	sched, err := svc.Schedule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, clock.MustParse("09:30"), sched.SleepEnd)
	assert.Equal(t, clock.MustParse("01:30"), sched.SleepStart)
}

func TestOverridesWin(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	_, err := svc.LogWakeTime(ctx, clock.MustParse("08:00"))
	require.NoError(t, err)

	light := clock.MustParse("07:15")
	require.NoError(t, svc.SetOverrides(ctx, Overrides{GetLightStart: &light}))
	sched, err := svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, light, sched.GetLightStart)
	assert.Equal(t, clock.MustParse("20:00"), sched.AvoidLightStart)

	require.NoError(t, svc.SetOverrides(ctx, Overrides{}))
	sched, _ = svc.Schedule(ctx)
	assert.Equal(t, clock.MustParse("08:00"), sched.GetLightStart)
}

func TestRequestShiftUsesSleepGoal(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	plan, err := svc.RequestShift(ctx, clock.MustParse("06:30"))
	require.NoError(t, err)
	assert.Equal(t, clock.MustParse("22:30"), plan.Bedtime)

	require.NoError(t, svc.SetSleepGoal(ctx, 10))
	plan, err = svc.RequestShift(ctx, clock.MustParse("06:30"))
	require.NoError(t, err)
	assert.Equal(t, clock.MustParse("20:30"), plan.Bedtime)
}

func hasKind(p *reminder.Plan, k reminder.Kind) bool {
	for _, r := range p.Reminders {
		if r.Kind == k {
			return true
		}
	}
	return false
}

func TestListingRemindersDoesNotIssueThem(t *testing.T) {
	ctx := context.Background()
	svc, fc := setup(t)

	_, err := svc.Reminders(ctx)
	assert.ErrorIs(t, err, ErrNoWakeTime)

	_, err = svc.LogWakeTime(ctx, clock.MustParse("08:00"))
	require.NoError(t, err)
	_, err = svc.RequestShift(ctx, clock.MustParse("06:30"))
	require.NoError(t, err)

	first, err := svc.Reminders(ctx)
	require.NoError(t, err)
	for day := 0; day < 5; day++ {
		p, err := svc.Reminders(ctx)
		require.NoError(t, err)
		assert.True(t, hasKind(p, reminder.KindShiftMorning), "day %d", day)
		assert.Equal(t, 1, p.MorningCount, "day %d", day)
		assert.Equal(t, 1, p.NightCount, "day %d", day)
		assert.Equal(t, first.Reminders[0].ID, p.Reminders[0].ID, "same armed set")
		assert.True(t, p.Reminders[0].Next.After(fc.t))
		fc.t = fc.t.AddDate(0, 0, 1)
	}
}

func TestSettingsChangesIssueShiftReminders(t *testing.T) {
	ctx := context.Background()
	svc, fc := setup(t)

	_, err := svc.LogWakeTime(ctx, clock.MustParse("08:00"))
	require.NoError(t, err)
	_, err = svc.RequestShift(ctx, clock.MustParse("06:30"))
	require.NoError(t, err)

	// each save re-arms the set and counts the shift reminders once more
	for i := 2; i <= reminder.MaxShiftReminders; i++ {
		fc.t = fc.t.AddDate(0, 0, 1)
		require.NoError(t, svc.SetSleepGoal(ctx, 8))
		p, err := svc.Reminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, p.MorningCount)
		assert.True(t, hasKind(p, reminder.KindShiftMorning), "save %d", i)
		assert.False(t, hasKind(p, reminder.KindSleep), "night reminder replaces sleep")
	}

	fc.t = fc.t.AddDate(0, 0, 1)
	require.NoError(t, svc.SetOverrides(ctx, Overrides{}))
	p, err := svc.Reminders(ctx)
	require.NoError(t, err)
	assert.False(t, hasKind(p, reminder.KindShiftMorning))
	assert.True(t, hasKind(p, reminder.KindSleep))
	assert.Equal(t, reminder.MaxShiftReminders, p.MorningCount)

	// a new shift restarts the counters
	_, err = svc.RequestShift(ctx, clock.MustParse("06:00"))
	require.NoError(t, err)
	p, err = svc.Reminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.MorningCount)
	assert.True(t, hasKind(p, reminder.KindShiftMorning))
}

func TestResetDisarmsReminders(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)
	require.NoError(t, svc.SetSleepGoal(ctx, 9))

	_, err := svc.LogWakeTime(ctx, clock.MustParse("07:00"))
	require.NoError(t, err)
	p, err := svc.Reminders(ctx)
	require.NoError(t, err)
	assert.Len(t, p.Reminders, 3)

	require.NoError(t, svc.Reset(ctx))
	_, err = svc.Reminders(ctx)
	assert.ErrorIs(t, err, ErrNoWakeTime)
}
