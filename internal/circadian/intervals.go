package circadian

import (
	"time"

	"circadian/internal/clock"
)

type Kind string

const (
	KindGetLight   Kind = "get_light"
	KindDeadzone   Kind = "deadzone"
	KindAvoidLight Kind = "avoid_light"
	KindSleep      Kind = "sleep"
)

// Interval is a circular range on the 24h clock. End may be earlier than
// Start, in which case the range crosses midnight.
type Interval struct {
	Kind  Kind            `json:"kind"`
	Name  string          `json:"name"`
	Start clock.TimeOfDay `json:"start"`
	End   clock.TimeOfDay `json:"end"`
}

// Duration is never negative.
func (iv Interval) Duration() time.Duration {
	return iv.Start.Until(iv.End)
}

func (iv Interval) CrossesMidnight() bool {
	return iv.End < iv.Start
}

// Contains reports whether t falls in [Start, End).
func (iv Interval) Contains(t clock.TimeOfDay) bool {
	return iv.Start.Until(t) < iv.Duration()
}

func (iv Interval) PercentOfDay() float64 {
	return PercentOfDay(iv.Start, iv.End)
}

// PercentOfDay is the share of 24h covered by start→end, adding a day to
// end when it falls before start.
func PercentOfDay(start, end clock.TimeOfDay) float64 {
	return float64(start.Until(end)) / float64(24*time.Hour) * 100
}

// Intervals returns the four day segments in display order.
func (s Schedule) Intervals() []Interval {
	return []Interval{
		{Kind: KindGetLight, Name: "Get Light", Start: s.GetLightStart, End: s.GetLightEnd},
		{Kind: KindDeadzone, Name: "Circadian Deadzone", Start: s.DeadzoneStart, End: s.AvoidLightStart},
		{Kind: KindAvoidLight, Name: "Avoid Light", Start: s.AvoidLightStart, End: s.AvoidLightEnd},
		{Kind: KindSleep, Name: "Sleep", Start: s.SleepStart, End: s.SleepEnd},
	}
}

// Current returns the first segment containing t.
func (s Schedule) Current(t clock.TimeOfDay) (Interval, bool) {
	for _, iv := range s.Intervals() {
		if iv.Contains(t) {
			return iv, true
		}
	}
	return Interval{}, false
}

// StartAngle is the pie-chart start angle in degrees of segment i, with the
// first segment starting at the top of the chart (-90°).
func StartAngle(intervals []Interval, i int) float64 {
	cum := 0.0
	for j := 0; j < i && j < len(intervals); j++ {
		cum += intervals[j].PercentOfDay()
	}
	return cum/100*360 - 90
}

// ProgressAngle is how far round the day t is, measured from origin, in degrees.
func ProgressAngle(t, origin clock.TimeOfDay) float64 {
	return float64(origin.Until(t)) / float64(24*time.Hour) * 360
}
