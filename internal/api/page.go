package api

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"circadian/internal/circadian"
	"circadian/internal/clock"
)

// Page form defaults; redirect URLs only carry params that differ from these.
const (
	pageDefaultWake = "08:00"
	pageDefaultGoal = "8"
)

var pageTpl = template.Must(template.New("page").Parse(pageHTML))

type PageData struct {
	Wake       string
	Goal       string
	GetLight   string
	AvoidLight string
	ShiftWake  string

	Version string

	Error  string
	Result *ScheduleView
	Shift  *circadian.ShiftPlan

	ShareDescription string
}

// GetPage renders the form. With a wake time in the query the schedule is
// computed ad hoc; otherwise the stored settings prefill the form.
func GetPage(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := PageData{
			Wake:       orDefault(c.Query("wake"), ""),
			Goal:       orDefault(c.Query("goal"), pageDefaultGoal),
			GetLight:   strings.TrimSpace(c.Query("get_light")),
			AvoidLight: strings.TrimSpace(c.Query("avoid_light")),
			ShiftWake:  strings.TrimSpace(c.Query("shift")),
			Version:    app.Version(),
		}

		if data.Wake == "" {
			data.Wake = pageDefaultWake
			if st, err := app.Session().Status(c.Request.Context()); err == nil && st.WakeTime != nil {
				data.Wake = st.WakeTime.String()
				data.Goal = strconv.Itoa(st.SleepGoalHours)
			}
		} else {
			settings, err := settingsFromQuery(c, app.Session().DefaultSleepGoal())
			if err != nil {
				data.Error = err.Error()
			} else {
				now := clock.FromTime(app.Session().Now())
				v := NewScheduleView(circadian.ComputeSchedule(settings), &now)
				data.Result = &v
				data.ShareDescription = shareDescription(v)
			}
		}

		if data.ShiftWake != "" && data.Error == "" {
			t, err := clock.Parse(data.ShiftWake)
			goal, gerr := strconv.Atoi(data.Goal)
			switch {
			case err != nil:
				data.Error = "shift: " + err.Error()
			case gerr != nil || !circadian.ValidSleepGoal(goal):
				data.Error = "sleep goal must be 6 to 10 hours"
			default:
				plan := circadian.ComputeShift(t, goal)
				data.Shift = &plan
			}
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := pageTpl.Execute(c.Writer, data); err != nil {
			app.Logger().Sugar().Errorf("render page: %v", err)
		}
	}
}

// PostCalc validates the form and redirects to GET so the URL reflects the
// calculation.
func PostCalc(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		wake := strings.TrimSpace(c.PostForm("wake"))
		goal := strings.TrimSpace(c.PostForm("goal"))
		getLight := strings.TrimSpace(c.PostForm("get_light"))
		avoidLight := strings.TrimSpace(c.PostForm("avoid_light"))
		shift := strings.TrimSpace(c.PostForm("shift"))

		data := PageData{Wake: wake, Goal: goal, GetLight: getLight, AvoidLight: avoidLight, ShiftWake: shift, Version: app.Version()}
		fail := func(msg string) {
			data.Error = msg
			c.Header("Content-Type", "text/html; charset=utf-8")
			c.Status(http.StatusBadRequest)
			_ = pageTpl.Execute(c.Writer, data)
		}

		if wake == "" {
			fail("wake time is required (HH:MM)")
			return
		}
		if _, err := clock.Parse(wake); err != nil {
			fail(err.Error())
			return
		}
		if goal == "" {
			goal = pageDefaultGoal
		}
		if h, err := strconv.Atoi(goal); err != nil || !circadian.ValidSleepGoal(h) {
			fail("sleep goal must be 6 to 10 hours")
			return
		}
		for _, v := range []string{getLight, avoidLight, shift} {
			if v == "" {
				continue
			}
			if _, err := clock.Parse(v); err != nil {
				fail(err.Error())
				return
			}
		}

		c.Redirect(http.StatusFound, buildPageURL(wake, goal, getLight, avoidLight, shift))
	}
}

// buildPageURL returns "/?wake=..." and only adds other params when set or
// not default.
func buildPageURL(wake, goal, getLight, avoidLight, shift string) string {
	v := url.Values{}
	v.Set("wake", wake)
	if goal != "" && goal != pageDefaultGoal {
		v.Set("goal", goal)
	}
	if getLight != "" {
		v.Set("get_light", getLight)
	}
	if avoidLight != "" {
		v.Set("avoid_light", avoidLight)
	}
	if shift != "" {
		v.Set("shift", shift)
	}
	return "/?" + v.Encode()
}

func orDefault(val, def string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return strings.TrimSpace(val)
}

// shareDescription is the meta description for link previews.
func shareDescription(v ScheduleView) string {
	parts := make([]string, 0, len(v.Intervals))
	for _, iv := range v.Intervals {
		parts = append(parts, iv.Label)
	}
	return strings.Join(parts, ". ") + "."
}

const pageHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Circadian Health</title>
  {{if .ShareDescription}}
  <meta name="description" content="{{.ShareDescription}}">
  <meta property="og:description" content="{{.ShareDescription}}">
  {{end}}
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; padding: 24px; max-width: 960px; box-sizing: border-box; }
    .err { color: #b00020; margin: 12px 0; padding: 10px; background: #ffebee; border-radius: 6px; }
    .card { border: 1px solid #e0e0e0; border-radius: 10px; padding: 16px; margin: 16px 0; background: #fafafa; }
    .mono { font-family: ui-monospace, Menlo, Consolas, monospace; }
    table { border-collapse: collapse; width: 100%; margin-top: 10px; }
    td { padding: 8px 10px; border-top: 1px solid #eee; vertical-align: top; }
    .k { width: 240px; color: #444; }
    .get_light { color: #2e7d32; } .deadzone { color: #ef6c00; } .avoid_light { color: #c62828; } .sleep { color: #1565c0; }
    .field { margin-bottom: 14px; }
    .field label { display: block; font-weight: 500; margin-bottom: 4px; }
    .field input { padding: 8px 10px; border: 1px solid #ccc; border-radius: 6px; max-width: 140px; }
    footer { margin-top: 40px; color: #666; font-size: 0.9em; text-align: center; }
  </style>
</head>
<body>
  <form method="POST" action="/calc">
    <div class="field">
      <label for="wake">Wake-up time</label>
      <input id="wake" name="wake" type="text" value="{{.Wake}}" placeholder="08:00" pattern="[0-9]{1,2}:[0-9]{2}( ?[AaPp][Mm])?" required>
    </div>
    <div class="field">
      <label for="goal">Sleep goal (hours)</label>
      <input id="goal" name="goal" type="number" min="6" max="10" step="1" value="{{.Goal}}">
    </div>
    <div class="field">
      <label for="get_light">Get light start (optional)</label>
      <input id="get_light" name="get_light" type="text" value="{{.GetLight}}" placeholder="auto">
    </div>
    <div class="field">
      <label for="avoid_light">Avoid light start (optional)</label>
      <input id="avoid_light" name="avoid_light" type="text" value="{{.AvoidLight}}" placeholder="auto">
    </div>
    <div class="field">
      <label for="shift">Desired new wake-up time (optional)</label>
      <input id="shift" name="shift" type="text" value="{{.ShiftWake}}" placeholder="06:30">
    </div>
    <button type="submit">Calculate</button>
  </form>

  {{if .Error}}<div class="err">{{.Error}}</div>{{end}}

  {{with .Result}}
    <div class="card">
      <div><b>Temperature minimum</b>: <span class="mono">{{.Schedule.TemperatureMinimum.Format12}}</span></div>
      <div><b>Temperature maximum</b>: <span class="mono">{{.Schedule.TemperatureMaximum.Format12}}</span></div>
      {{if .Current}}<div><b>Now</b>: <span class="{{.Current}}">{{.Current}}</span></div>{{end}}
      <table>
        {{range .Intervals}}
        <tr>
          <td class="k {{.Kind}}">{{.Name}}</td>
          <td class="mono">{{.Start.Format12}} → {{.End.Format12}}</td>
          <td class="mono">{{.Duration}}</td>
          <td class="mono">{{printf "%.1f" .PercentOfDay}}%</td>
        </tr>
        {{end}}
      </table>
    </div>
  {{end}}

  {{with .Shift}}
    <div class="card">
      <b>Shift your rhythm</b>: go to bed at <span class="mono">{{.Bedtime.Format12}}</span>
      and wake up at <span class="mono">{{.WakeTime.Format12}}</span>.
    </div>
  {{end}}

  <footer>circadian v{{.Version}}</footer>
</body>
</html>`
