package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"circadian/internal/api"
	"circadian/internal/clock"
	"circadian/internal/session"
)

// withApp runs fn with a wired app and closes it afterwards.
func withApp(cmd *cobra.Command, configFile string, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, configFile)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newServeCmd(configFile *string) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, *configFile, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default APP_PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, configFile string, port int) error {
	return withApp(cmd, configFile, func(ctx context.Context, a *app) error {
		if port <= 0 {
			port = a.cfg.AppPort
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.NewRouter(a),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			printListenAddrs(cmd, port)
			a.logger.Info("server starting", zap.Int("port", port))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		a.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func newLogCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "log HH:MM",
		Short: "Log today's wake-up time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wake, err := clock.Parse(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, *configFile, func(ctx context.Context, a *app) error {
				sched, err := a.svc.LogWakeTime(ctx, wake)
				if errors.Is(err, session.ErrAlreadyLogged) {
					return fmt.Errorf("you've already logged your wake-up time today")
				}
				if err != nil {
					return err
				}
				printSchedule(cmd, *sched)
				return nil
			})
		},
	}
}

func newGoalCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "goal HOURS",
		Short: "Set the sleep goal (6-10 hours)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseGoal(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, *configFile, func(ctx context.Context, a *app) error {
				if err := a.svc.SetSleepGoal(ctx, h); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sleep goal: %d hours\n", h)
				return nil
			})
		},
	}
}

func newShiftCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "shift HH:MM",
		Short: "Plan a shift to a new wake-up time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desired, err := clock.Parse(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, *configFile, func(ctx context.Context, a *app) error {
				plan, err := a.svc.RequestShift(ctx, desired)
				if err != nil {
					return err
				}
				printShift(cmd, *plan)
				return nil
			})
		},
	}
}

func newOverrideCmd(configFile *string) *cobra.Command {
	var getLight, avoidLight, sleepStart string
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Set or clear start-time overrides (empty clears)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				o   session.Overrides
				err error
			)
			if o.GetLightStart, err = optionalTime(getLight); err != nil {
				return fmt.Errorf("invalid --get-light: %w", err)
			}
			if o.AvoidLightStart, err = optionalTime(avoidLight); err != nil {
				return fmt.Errorf("invalid --avoid-light: %w", err)
			}
			if o.SleepStart, err = optionalTime(sleepStart); err != nil {
				return fmt.Errorf("invalid --sleep-start: %w", err)
			}
			return withApp(cmd, *configFile, func(ctx context.Context, a *app) error {
				if err := a.svc.SetOverrides(ctx, o); err != nil {
					return err
				}
				sched, err := a.svc.Schedule(ctx)
				if err != nil {
					return err
				}
				printSchedule(cmd, *sched)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&getLight, "get-light", "", "Get-light start HH:MM")
	cmd.Flags().StringVar(&avoidLight, "avoid-light", "", "Avoid-light start HH:MM")
	cmd.Flags().StringVar(&sleepStart, "sleep-start", "", "Sleep start HH:MM")
	return cmd
}

func newScheduleCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show the schedule for the stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configFile, func(ctx context.Context, a *app) error {
				sched, err := a.svc.Schedule(ctx)
				if err != nil {
					return err
				}
				printSchedule(cmd, *sched)
				return nil
			})
		},
	}
}

func newStatusCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configFile, func(ctx context.Context, a *app) error {
				st, err := a.svc.Status(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			})
		},
	}
}

func newRemindersCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "List today's reminders and when they next fire",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configFile, func(ctx context.Context, a *app) error {
				plan, err := a.svc.Reminders(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, r := range plan.Reminders {
					fmt.Fprintf(out, "%s  %-12s %s  (next %s)\n",
						r.At.Format12(), r.Spec, r.Message, r.Next.Format("Mon 02 Jan 15:04"))
				}
				return nil
			})
		},
	}
}

func newResetCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the wake time, sleep goal and shift plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configFile, func(ctx context.Context, a *app) error {
				if err := a.svc.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Reset.")
				return nil
			})
		},
	}
}

func printListenAddrs(cmd *cobra.Command, port int) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Listening on:")
	fmt.Fprintf(out, "  http://127.0.0.1:%d/\n", port)

	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			ip, _, err := net.ParseCIDR(a.String())
			if err != nil || ip == nil || ip.IsLoopback() || ip.To4() == nil {
				continue
			}
			fmt.Fprintf(out, "  http://%s:%d/\n", ip.String(), port)
		}
	}
	fmt.Fprintln(out)
}
