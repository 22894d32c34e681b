package api

import (
	"math"

	"circadian/internal/circadian"
	"circadian/internal/clock"
)

type IntervalView struct {
	circadian.Interval
	Label        string  `json:"label"`
	Duration     string  `json:"duration"`
	PercentOfDay float64 `json:"percent_of_day"`
	StartAngle   float64 `json:"start_angle"`
	Crosses      bool    `json:"crosses_midnight"`
}

type ScheduleView struct {
	Schedule  circadian.Schedule `json:"schedule"`
	Intervals []IntervalView     `json:"intervals"`
	Current   circadian.Kind     `json:"current,omitempty"`
	Now       *NowView           `json:"now,omitempty"`
}

// NowView places the current time on the chart. ProgressAngle runs from the
// get-light start. RingRadians is the ring's end point, measured like the pie
// segments from the top of the chart (-90°).
type NowView struct {
	Time          clock.TimeOfDay `json:"time"`
	Degrees       float64         `json:"degrees"`
	Radians       float64         `json:"radians"`
	ProgressAngle float64         `json:"progress_angle"`
	RingRadians   float64         `json:"ring_radians"`
}

// NewScheduleView decorates s with the chart geometry. now is optional.
func NewScheduleView(s circadian.Schedule, now *clock.TimeOfDay) ScheduleView {
	ivs := s.Intervals()
	v := ScheduleView{Schedule: s, Intervals: make([]IntervalView, 0, len(ivs))}
	for i, iv := range ivs {
		v.Intervals = append(v.Intervals, IntervalView{
			Interval:     iv,
			Label:        iv.Name + ": " + iv.Start.Format12() + " - " + iv.End.Format12(),
			Duration:     clock.FormatDuration(iv.Duration()),
			PercentOfDay: iv.PercentOfDay(),
			StartAngle:   circadian.StartAngle(ivs, i),
			Crosses:      iv.CrossesMidnight(),
		})
	}
	if now != nil {
		progress := circadian.ProgressAngle(*now, s.GetLightStart)
		v.Now = &NowView{
			Time:          *now,
			Degrees:       now.Degrees(),
			Radians:       now.Radians(),
			ProgressAngle: progress,
			RingRadians:   (progress - 90) * math.Pi / 180,
		}
		if cur, ok := s.Current(*now); ok {
			v.Current = cur.Kind
		}
	}
	return v
}
