package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"circadian/internal/circadian"
	"circadian/internal/clock"
)

const appVersion = "0.2.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		wakeStr       string
		goalH         int
		getLightStr   string
		avoidLightStr string
		shiftStr      string
		port          int
		configFile    string
	)

	cmd := &cobra.Command{
		Use:           "circadian",
		Short:         "Circadian rhythm light and sleep schedule (CLI or web)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ok, _ := cmd.Flags().GetBool("version"); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "circadian v%s\n", appVersion)
				return nil
			}

			if port > 0 {
				return runServe(cmd, configFile, port)
			}

			if strings.TrimSpace(wakeStr) == "" {
				return fmt.Errorf("--wake is required (or use --port)")
			}
			if !circadian.ValidSleepGoal(goalH) {
				return fmt.Errorf("--goal must be between %d and %d hours", circadian.MinSleepGoal, circadian.MaxSleepGoal)
			}

			settings, err := parseSettings(wakeStr, goalH, getLightStr, avoidLightStr)
			if err != nil {
				return err
			}
			printSchedule(cmd, circadian.ComputeSchedule(settings))

			if strings.TrimSpace(shiftStr) != "" {
				desired, err := clock.Parse(shiftStr)
				if err != nil {
					return fmt.Errorf("invalid --shift: %w", err)
				}
				printShift(cmd, circadian.ComputeShift(desired, goalH))
			}
			return nil
		},
	}

	cmd.Version = appVersion
	cmd.SetVersionTemplate("circadian v{{.Version}}\n")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.Flags().StringVar(&wakeStr, "wake", "", "Wake-up time HH:MM")
	cmd.Flags().IntVar(&goalH, "goal", circadian.DefaultSleepGoal, "Sleep goal in whole hours (6-10)")
	cmd.Flags().StringVar(&getLightStr, "get-light", "", "Override get-light start HH:MM (optional)")
	cmd.Flags().StringVar(&avoidLightStr, "avoid-light", "", "Override avoid-light start HH:MM (optional)")
	cmd.Flags().StringVar(&shiftStr, "shift", "", "Desired new wake-up time HH:MM (optional)")
	cmd.Flags().IntVar(&port, "port", 0, "Run web UI on this port (e.g. 8484)")

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./config.yaml or ./config/config.yaml)")

	cmd.AddCommand(
		newServeCmd(&configFile),
		newLogCmd(&configFile),
		newGoalCmd(&configFile),
		newShiftCmd(&configFile),
		newOverrideCmd(&configFile),
		newScheduleCmd(&configFile),
		newStatusCmd(&configFile),
		newRemindersCmd(&configFile),
		newResetCmd(&configFile),
	)
	return cmd
}

/* ---------------- output ---------------- */

func printSchedule(cmd *cobra.Command, s circadian.Schedule) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Temperature minimum: %s\n", s.TemperatureMinimum.Format12())
	fmt.Fprintf(out, "Temperature maximum: %s\n\n", s.TemperatureMaximum.Format12())

	for _, iv := range s.Intervals() {
		fmt.Fprintf(out, "%-20s %s -> %s  (%s, %4.1f%%)\n",
			iv.Name, iv.Start.Format12(), iv.End.Format12(),
			clock.FormatDuration(iv.Duration()), iv.PercentOfDay())
	}
}

func printShift(cmd *cobra.Command, p circadian.ShiftPlan) {
	fmt.Fprintf(cmd.OutOrStdout(), "\nShift: go to bed at %s and wake up at %s\n", p.Bedtime.Format12(), p.WakeTime.Format12())
}

/* ---------------- helpers ---------------- */

func parseSettings(wakeStr string, goalH int, getLightStr, avoidLightStr string) (circadian.Settings, error) {
	wake, err := clock.Parse(wakeStr)
	if err != nil {
		return circadian.Settings{}, fmt.Errorf("invalid --wake: %w", err)
	}
	s := circadian.Settings{WakeTime: wake, SleepGoalHours: goalH}

	if s.GetLightStart, err = optionalTime(getLightStr); err != nil {
		return circadian.Settings{}, fmt.Errorf("invalid --get-light: %w", err)
	}
	if s.AvoidLightStart, err = optionalTime(avoidLightStr); err != nil {
		return circadian.Settings{}, fmt.Errorf("invalid --avoid-light: %w", err)
	}
	return s, nil
}

// optionalTime returns nil for an empty string.
func optionalTime(s string) (*clock.TimeOfDay, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := clock.Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseGoal(s string) (int, error) {
	h, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid sleep goal %q, expected whole hours", s)
	}
	return h, nil
}
