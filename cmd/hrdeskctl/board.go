package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/hr-delegation/internal/adapter"
	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/config"
	"github.com/example/hr-delegation/internal/schedule"
)

// boardEntry is one delegation record as printed by the board command.
type boardEntry struct {
	ID         string `json:"id" yaml:"id"`
	ParentID   string `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Title      string `json:"title" yaml:"title"`
	AssignedTo string `json:"assignedTo" yaml:"assignedTo"`
	Deadline   string `json:"deadline" yaml:"deadline"`
	Priority   string `json:"priority" yaml:"priority"`
	Status     string `json:"status" yaml:"status"`
	Progress   int    `json:"progress" yaml:"progress"`
	Label      string `json:"label" yaml:"label"`
	Kind       string `json:"kind" yaml:"kind"`

	presentation schedule.Status
}

func newBoardCmd() *cobra.Command {
	var assignee, output, nowFlag string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print delegation records with their derived status",
		Long: `Print every delegation record in the configured storage, optionally narrowed
to one assignee, with the presentation label computed now.

Output formats: table (default), yaml, json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(strings.TrimSpace(output))
			if format != "table" && format != "yaml" && format != "json" {
				return fmt.Errorf("unknown output %q: want table, yaml or json", output)
			}
			now, err := parseNow(nowFlag)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, release, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			service := application.NewDelegationServiceWithLogger(
				adapter.New(store).Delegations, nil, func() string { return "" }, func() time.Time { return now }, cliLogger(cfg))

			var filter application.RecordFilter
			if a := strings.TrimSpace(assignee); a != "" {
				filter.AssignedTo = &a
			}
			records, err := service.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			entries := boardEntries(records, now)
			return writeBoard(cmd.OutOrStdout(), format, entries)
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "only show records assigned to this person id")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, yaml or json")
	cmd.Flags().StringVar(&nowFlag, "now", "", "evaluate statuses at this RFC3339 instant")
	return cmd
}

func boardEntries(records []application.DelegationRecord, now time.Time) []boardEntry {
	entries := make([]boardEntry, 0, len(records))
	for _, record := range records {
		status := application.ResolveRecordStatus(record, now)
		entry := boardEntry{
			ID:           record.ID,
			Title:        record.Title,
			AssignedTo:   record.AssignedTo,
			Deadline:     record.Deadline.In(now.Location()).Format(time.RFC3339),
			Priority:     string(record.Priority),
			Status:       string(record.Status),
			Progress:     record.Progress,
			Label:        status.Label,
			Kind:         string(status.Kind),
			presentation: status,
		}
		if record.ParentID != nil {
			entry.ParentID = *record.ParentID
		}
		entries = append(entries, entry)
	}
	return entries
}

func writeBoard(w io.Writer, format string, entries []boardEntry) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No delegation records.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPARENT\tTITLE\tASSIGNEE\tDEADLINE\tPRIORITY\tPROGRESS\tSTATUS")
	for _, e := range entries {
		parent := e.ParentID
		if parent == "" {
			parent = "-"
		}
		// The colored label goes last so escape codes do not skew column widths.
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
			e.ID, parent, e.Title, e.AssignedTo, e.Deadline, e.Priority, e.Progress, paintStatus(e.presentation))
	}
	return tw.Flush()
}
