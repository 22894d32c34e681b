// Package session owns the user-facing flow around the calculator: the
// onboarding phases, the once-a-day wake log and the persisted overrides.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"circadian/internal/circadian"
	"circadian/internal/clock"
	"circadian/internal/reminder"
	"circadian/internal/store"
)

var (
	ErrAlreadyLogged    = errors.New("wake time already logged today")
	ErrInvalidSleepGoal = errors.New("invalid sleep goal")
	ErrNoWakeTime       = errors.New("no wake time logged yet")
)

type Phase string

const (
	NeedsWakeTime   Phase = "needs_wake_time"
	NeedsSleepGoal  Phase = "needs_sleep_goal"
	ShowingSchedule Phase = "showing_schedule"
	ShiftRequested  Phase = "shift_requested"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

type sleepGoalRequest struct {
	Hours int `validate:"gte=6,lte=10"`
}

// Status is a snapshot of where the user is in the flow.
type Status struct {
	Phase          Phase                `json:"phase"`
	WakeTime       *clock.TimeOfDay     `json:"wake_time,omitempty"`
	SleepGoalHours int                  `json:"sleep_goal_hours"`
	Shift          *circadian.ShiftPlan `json:"shift,omitempty"`
	LastLoggedDate string               `json:"last_logged_date,omitempty"`
}

// Overrides replace derived start times. A nil field clears that override.
type Overrides struct {
	GetLightStart   *clock.TimeOfDay `json:"get_light_start"`
	AvoidLightStart *clock.TimeOfDay `json:"avoid_light_start"`
	SleepStart      *clock.TimeOfDay `json:"sleep_start"`
}

type Service struct {
	repo        store.Repository
	logger      *zap.Logger
	now         func() time.Time
	defaultGoal int

	// serializes load-modify-save so the latest submission wins
	mu sync.Mutex
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithDefaultSleepGoal(h int) Option {
	return func(s *Service) { s.defaultGoal = h }
}

func New(repo store.Repository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		logger:      logger,
		now:         time.Now,
		defaultGoal: circadian.DefaultSleepGoal,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now is the service clock, time.Now unless overridden.
func (s *Service) Now() time.Time { return s.now() }

// DefaultSleepGoal is the goal used until the user picks one.
func (s *Service) DefaultSleepGoal() int { return s.defaultGoal }

func phaseOf(st *store.State) Phase {
	switch {
	case st.WakeTime == nil:
		return NeedsWakeTime
	case st.SleepGoalHours == 0:
		return NeedsSleepGoal
	case st.Shift != nil:
		return ShiftRequested
	default:
		return ShowingSchedule
	}
}

func (s *Service) Status(ctx context.Context) (*Status, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		Phase:          phaseOf(st),
		WakeTime:       st.WakeTime,
		SleepGoalHours: s.goalOf(st),
		Shift:          st.Shift,
		LastLoggedDate: st.LastLoggedDate,
	}, nil
}

// LogWakeTime records today's wake time. Only one log per calendar day is
// accepted.
func (s *Service) LogWakeTime(ctx context.Context, wake clock.TimeOfDay) (*circadian.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now().Format(dateLayout)
	if st.LastLoggedDate == today {
		return nil, ErrAlreadyLogged
	}

	st.WakeTime = &wake
	st.LastLoggedDate = today
	if err := s.rearm(st); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Info("wake time logged", zap.Stringer("wake", wake), zap.String("date", today))

	sched := circadian.ComputeSchedule(s.settingsOf(st))
	return &sched, nil
}

func (s *Service) SetSleepGoal(ctx context.Context, hours int) error {
	if err := validate.Struct(sleepGoalRequest{Hours: hours}); err != nil {
		return fmt.Errorf("%w: %d hours is outside %d-%d: %v", ErrInvalidSleepGoal, hours, circadian.MinSleepGoal, circadian.MaxSleepGoal, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	st.SleepGoalHours = hours
	if err := s.rearm(st); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return err
	}
	s.logger.Info("sleep goal set", zap.Int("hours", hours))
	return nil
}

func (s *Service) SetOverrides(ctx context.Context, o Overrides) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	st.GetLightStart = o.GetLightStart
	st.AvoidLightStart = o.AvoidLightStart
	st.SleepStart = o.SleepStart
	if err := s.rearm(st); err != nil {
		return err
	}
	return s.repo.Save(ctx, st)
}

// RequestShift stores a plan to move the wake time to desired. The shift
// reminder counters restart from zero.
func (s *Service) RequestShift(ctx context.Context, desired clock.TimeOfDay) (*circadian.ShiftPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	plan := circadian.ComputeShift(desired, s.goalOf(st))
	st.Shift = &plan
	st.MorningReminderCount = 0
	st.NightReminderCount = 0
	if err := s.rearm(st); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, st); err != nil {
		return nil, err
	}
	s.logger.Info("shift requested",
		zap.Stringer("wake", plan.WakeTime),
		zap.Stringer("bedtime", plan.Bedtime))
	return &plan, nil
}

// Schedule computes today's schedule from the stored settings. Before any
// wake time is logged the current time stands in for it.
func (s *Service) Schedule(ctx context.Context) (*circadian.Schedule, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	sched := circadian.ComputeSchedule(s.settingsOf(st))
	return &sched, nil
}

// Reminders lists the reminders armed at the last settings change, with the
// next fire times taken from now. It does not count as issuing them.
func (s *Service) Reminders(ctx context.Context) (*reminder.Plan, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if st.WakeTime == nil {
		return nil, ErrNoWakeTime
	}
	rs, err := reminder.Refresh(st.Reminders, s.now())
	if err != nil {
		return nil, err
	}
	return &reminder.Plan{
		Reminders:    rs,
		MorningCount: st.MorningReminderCount,
		NightCount:   st.NightReminderCount,
		NightIssued:  st.NightReminderIssued,
	}, nil
}

// rearm replaces the armed reminders after a settings change and commits the
// shift-reminder bookkeeping into st. Nothing is armed without a wake time.
func (s *Service) rearm(st *store.State) error {
	if st.WakeTime == nil {
		st.Reminders = nil
		return nil
	}
	plan, err := reminder.Build(reminder.Input{
		Schedule:     circadian.ComputeSchedule(s.settingsOf(st)),
		Shift:        st.Shift,
		MorningCount: st.MorningReminderCount,
		NightCount:   st.NightReminderCount,
		NightIssued:  st.NightReminderIssued,
		Now:          s.now(),
	})
	if err != nil {
		return err
	}
	st.Reminders = plan.Reminders
	st.MorningReminderCount = plan.MorningCount
	st.NightReminderCount = plan.NightCount
	st.NightReminderIssued = plan.NightIssued
	s.logger.Debug("reminders armed", zap.Int("count", len(plan.Reminders)))
	return nil
}

// Reset forgets everything and returns to NeedsWakeTime.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("state reset")
	return nil
}

func (s *Service) goalOf(st *store.State) int {
	if st.SleepGoalHours == 0 {
		return s.defaultGoal
	}
	return st.SleepGoalHours
}

func (s *Service) settingsOf(st *store.State) circadian.Settings {
	wake := clock.FromTime(s.now())
	if st.WakeTime != nil {
		wake = *st.WakeTime
	}
	return circadian.Settings{
		WakeTime:        wake,
		SleepGoalHours:  s.goalOf(st),
		GetLightStart:   st.GetLightStart,
		AvoidLightStart: st.AvoidLightStart,
		SleepStart:      st.SleepStart,
	}
}
