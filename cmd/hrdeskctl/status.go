package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/schedule"
)

func newStatusCmd() *cobra.Command {
	var (
		date, start, end string
		status, nowFlag  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Resolve the presentation status of a window",
		Long: `Resolve the label shown for a meeting window or delegation deadline.

Examples:
  hrdeskctl status --date 2024-12-05 --start 14:00 --end 15:00
  hrdeskctl status --date 2024-12-05 --start 14:00 --end 15:00 --now 2024-12-05T14:30:00Z
  hrdeskctl status --date 2024-12-05 --start 17:00 --end 18:00 --status cancelled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := schedule.ParseWindow(date, start, end)
			if err != nil {
				return err
			}
			now, err := parseNow(nowFlag)
			if err != nil {
				return err
			}
			lifecycle, err := parseLifecycle(status)
			if err != nil {
				return err
			}

			resolved := schedule.Resolve(window, lifecycle, now)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", paintStatus(resolved), resolved.Kind)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "window date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "window start (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "window end (HH:MM)")
	cmd.Flags().StringVar(&status, "status", "", "stored lifecycle status, e.g. scheduled, cancelled, completed")
	cmd.Flags().StringVar(&nowFlag, "now", "", "evaluate at this RFC3339 instant instead of the current time")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func parseNow(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Now(), nil
	}
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now must be RFC3339: %w", err)
	}
	return now, nil
}

// parseLifecycle accepts meeting and delegation status values.
func parseLifecycle(value string) (schedule.Lifecycle, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return nil, nil
	}
	if meeting := application.MeetingStatus(value); meeting.Valid() {
		return meeting, nil
	}
	if record := application.DelegationStatus(value); record.Valid() {
		return record, nil
	}
	return nil, fmt.Errorf("unknown status %q", value)
}

func paintStatus(status schedule.Status) string {
	switch status.Kind {
	case schedule.KindLiveNow:
		return color.New(color.FgRed, color.Bold).Sprint(status.Label)
	case schedule.KindStartingSoon:
		return color.New(color.FgYellow).Sprint(status.Label)
	case schedule.KindToday:
		return color.New(color.FgCyan).Sprint(status.Label)
	case schedule.KindTerminal:
		return color.New(color.Faint).Sprint(status.Label)
	default:
		return status.Label
	}
}
