package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/hr-delegation/internal/schedule"
)

func newDayCmd() *cobra.Command {
	var events []string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Resolve the display status of a day from its entries",
		Long: `Reduce the calendar entries of one day to the single status shown for it.

Each --event is KIND or KIND:dept,dept where KIND is FullDayHoliday,
HalfDayHoliday or WorkingDay. An entry without departments is organization wide.

Example:
  hrdeskctl day --event HalfDayHoliday:sales --event FullDayHoliday:hr,ops`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]schedule.DayEvent, 0, len(events))
			for _, raw := range events {
				event, err := parseDayEvent(raw)
				if err != nil {
					return err
				}
				inputs = append(inputs, event)
			}

			resolution := schedule.ResolveDay(inputs)
			out := cmd.OutOrStdout()
			if !resolution.Assigned {
				fmt.Fprintln(out, color.New(color.Faint).Sprint("unassigned"))
				return nil
			}
			fmt.Fprintln(out, paintDay(resolution.Status))
			if len(resolution.Departments) > 0 {
				fmt.Fprintf(out, "departments: %s\n", strings.Join(resolution.Departments, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&events, "event", nil, "calendar entry as KIND[:dept,dept] (repeatable)")
	return cmd
}

func parseDayEvent(raw string) (schedule.DayEvent, error) {
	kind, depts, _ := strings.Cut(raw, ":")
	status, err := schedule.ParseDayStatus(kind)
	if err != nil {
		return schedule.DayEvent{}, err
	}
	event := schedule.DayEvent{Status: status}
	for _, dept := range strings.Split(depts, ",") {
		if dept = strings.TrimSpace(dept); dept != "" {
			event.Departments = append(event.Departments, dept)
		}
	}
	return event, nil
}

func paintDay(status schedule.DayStatus) string {
	switch status {
	case schedule.FullDayHoliday:
		return color.New(color.FgRed).Sprint(status)
	case schedule.HalfDayHoliday:
		return color.New(color.FgYellow).Sprint(status)
	default:
		return color.New(color.FgGreen).Sprint(status)
	}
}
