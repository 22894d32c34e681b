package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"circadian/internal/circadian"
	"circadian/internal/clock"
	"circadian/internal/session"
)

type WakeRequest struct {
	WakeTime *clock.TimeOfDay `json:"wake_time" binding:"required"`
}

type GoalRequest struct {
	Hours int `json:"hours" binding:"required"`
}

// GetSchedule returns the stored schedule, or an ad hoc one when the query
// carries a wake time. Ad hoc requests never touch the store.
func GetSchedule(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := app.Session()
		now := clock.FromTime(svc.Now())

		if c.Query("wake") != "" {
			settings, err := settingsFromQuery(c, svc.DefaultSleepGoal())
			if err != nil {
				HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid query")
				return
			}
			v := NewScheduleView(circadian.ComputeSchedule(settings), &now)
			HandleSuccess(c, http.StatusOK, v, map[string]any{"source": "query"})
			return
		}

		sched, err := svc.Schedule(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to compute schedule")
			return
		}
		st, err := svc.Status(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to load status")
			return
		}
		HandleSuccess(c, http.StatusOK, NewScheduleView(*sched, &now), map[string]any{
			"source": "stored",
			"phase":  st.Phase,
		})
	}
}

func PostWake(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body WakeRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		sched, err := app.Session().LogWakeTime(c.Request.Context(), *body.WakeTime)
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to log wake time")
			return
		}
		HandleSuccess(c, http.StatusCreated, NewScheduleView(*sched, nil), nil)
	}
}

func PostGoal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body GoalRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := app.Session().SetSleepGoal(c.Request.Context(), body.Hours); err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to set sleep goal")
			return
		}
		st, err := app.Session().Status(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to load status")
			return
		}
		HandleSuccess(c, http.StatusOK, st, nil)
	}
}

func PutOverrides(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body session.Overrides
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := app.Session().SetOverrides(c.Request.Context(), body); err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to save overrides")
			return
		}
		HandleSuccess(c, http.StatusOK, body, nil)
	}
}

func PostShift(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body WakeRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		plan, err := app.Session().RequestShift(c.Request.Context(), *body.WakeTime)
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to plan shift")
			return
		}
		HandleSuccess(c, http.StatusCreated, plan, map[string]any{
			"message": fmt.Sprintf("Go to bed at %s and wake up at %s.", plan.Bedtime.Format12(), plan.WakeTime.Format12()),
		})
	}
}

func GetReminders(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		plan, err := app.Session().Reminders(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to plan reminders")
			return
		}
		HandleSuccess(c, http.StatusOK, plan.Reminders, map[string]any{
			"morning_count": plan.MorningCount,
			"night_count":   plan.NightCount,
		})
	}
}

func GetStatus(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := app.Session().Status(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to load status")
			return
		}
		HandleSuccess(c, http.StatusOK, st, nil)
	}
}

func DeleteState(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Session().Reset(c.Request.Context()); err != nil {
			HandleError(c, app.Logger(), err, statusFor(err), "Failed to reset")
			return
		}
		HandleSuccess(c, http.StatusOK, nil, map[string]any{"phase": session.NeedsWakeTime})
	}
}

func settingsFromQuery(c *gin.Context, defaultGoal int) (circadian.Settings, error) {
	wake, err := clock.Parse(c.Query("wake"))
	if err != nil {
		return circadian.Settings{}, err
	}
	s := circadian.Settings{WakeTime: wake, SleepGoalHours: defaultGoal}

	if g := strings.TrimSpace(c.Query("goal")); g != "" {
		h, err := strconv.Atoi(g)
		if err != nil || !circadian.ValidSleepGoal(h) {
			return circadian.Settings{}, fmt.Errorf("goal must be a whole number of hours between %d and %d", circadian.MinSleepGoal, circadian.MaxSleepGoal)
		}
		s.SleepGoalHours = h
	}

	for key, dst := range map[string]**clock.TimeOfDay{
		"get_light":   &s.GetLightStart,
		"avoid_light": &s.AvoidLightStart,
		"sleep_start": &s.SleepStart,
	} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		t, err := clock.Parse(raw)
		if err != nil {
			return circadian.Settings{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = &t
	}
	return s, nil
}
