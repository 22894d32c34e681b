package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"circadian/internal/circadian"
	"circadian/internal/clock"
	"circadian/internal/config"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data", "state.json"), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestFileStoreEmpty(t *testing.T) {
	s := newTestFileStore(t)
	st, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.WakeTime)
	assert.Zero(t, st.SleepGoalHours)
}

func TestFileStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	wake := clock.MustParse("07:20")
	override := clock.MustParse("07:15")
	in := &State{
		WakeTime:           &wake,
		SleepGoalHours:     9,
		GetLightStart:      &override,
		Shift:              &circadian.ShiftPlan{Bedtime: clock.MustParse("22:30"), WakeTime: clock.MustParse("06:30")},
		LastLoggedDate:     "2024-03-09",
		NightReminderCount: 2,
	}
	require.NoError(t, s.Save(ctx, in))
	assert.False(t, in.UpdatedAt.IsZero())

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, out.WakeTime)
	assert.Equal(t, wake, *out.WakeTime)
	assert.Equal(t, 9, out.SleepGoalHours)
	assert.Equal(t, override, *out.GetLightStart)
	assert.Nil(t, out.AvoidLightStart)
	assert.Equal(t, clock.MustParse("22:30"), out.Shift.Bedtime)
	assert.Equal(t, "2024-03-09", out.LastLoggedDate)
	assert.Equal(t, 2, out.NightReminderCount)
}

func TestFileStoreClear(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)
	wake := clock.MustParse("06:00")
	require.NoError(t, s.Save(ctx, &State{WakeTime: &wake}))

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clearing twice is fine")

	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.WakeTime)
}

func TestFileStoreCorrupt(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.WriteFile(s.path, []byte("{not json"), 0o644))
	_, err := s.Load(context.Background())
	assert.Error(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StorageBackend: "postgres"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpenFileBackend(t *testing.T) {
	cfg := &config.Config{StorageBackend: "file", StateFile: filepath.Join(t.TempDir(), "s.json")}
	repo, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()
	assert.IsType(t, &FileStore{}, repo)
}
