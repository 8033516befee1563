package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/hr-delegation/internal/application"
	"github.com/example/hr-delegation/internal/persistence/sqlite"
	"github.com/example/hr-delegation/internal/persistence/sqlite/migration"
	"github.com/example/hr-delegation/internal/testfixtures"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hrdesk.db")
	t.Setenv("HRDESK_CONFIG", "")
	t.Setenv("HRDESK_STORAGE", "sqlite")
	t.Setenv("HRDESK_SQLITE_PATH", path)
	return path
}

func TestStatusCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "live window",
			args: []string{"--date", "2024-12-05", "--start", "14:00", "--end", "15:00", "--now", "2024-12-05T14:30:00Z"},
			want: "Live Now\t(live_now)\n",
		},
		{
			name: "tomorrow",
			args: []string{"--date", "2024-12-06", "--start", "09:00", "--end", "10:00", "--now", "2024-12-05T14:30:00Z"},
			want: "Tomorrow\t(tomorrow)\n",
		},
		{
			name: "terminal status wins",
			args: []string{"--date", "2024-12-05", "--start", "14:00", "--end", "15:00", "--now", "2024-12-05T14:30:00Z", "--status", "cancelled"},
			want: "cancelled\t(terminal)\n",
		},
		{
			name: "other dates use the short label",
			args: []string{"--date", "2024-12-20", "--start", "09:00", "--end", "10:00", "--now", "2024-12-05T14:30:00Z"},
			want: "Dec 20\t(date)\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"status"}, tc.args...)...)
			if err != nil {
				t.Fatalf("status: %v", err)
			}
			if out != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, out)
			}
		})
	}
}

func TestStatusCommandRejectsBadInput(t *testing.T) {
	if _, err := execute(t, "status", "--date", "2024-12-05", "--start", "15:00", "--end", "14:00"); err == nil {
		t.Fatal("expected inverted window to fail")
	}
	if _, err := execute(t, "status", "--date", "2024-12-05", "--start", "14:00", "--end", "15:00", "--status", "archived"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestDayCommand(t *testing.T) {
	out, err := execute(t, "day", "--event", "HalfDayHoliday:sales", "--event", "FullDayHoliday:hr,ops")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if want := "FullDayHoliday\ndepartments: hr, ops\n"; out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}

	out, err = execute(t, "day")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if out != "unassigned\n" {
		t.Fatalf("expected unassigned, got %q", out)
	}

	if _, err := execute(t, "day", "--event", "Vacation"); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
}

func TestHashKeyCommand(t *testing.T) {
	out, err := execute(t, "hash-key", "s3cret")
	if err != nil {
		t.Fatalf("hash-key: %v", err)
	}
	if err := application.VerifyAPIKey(strings.TrimSpace(out), "s3cret"); err != nil {
		t.Fatalf("printed hash does not verify: %v", err)
	}
}

func TestMigrateCommand(t *testing.T) {
	useSQLite(t)

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "APPLIED") {
		t.Fatalf("expected applied migrations, got %q", out)
	}

	out, err = execute(t, "migrate")
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Fatalf("expected up to date, got %q", out)
	}
}

func TestMigrateCommandNeedsSQLite(t *testing.T) {
	t.Setenv("HRDESK_CONFIG", "")
	t.Setenv("HRDESK_STORAGE", "memory")

	if _, err := execute(t, "migrate"); err == nil {
		t.Fatal("expected memory storage to be rejected")
	}
}

func seedBoard(t *testing.T, path string) (application.Person, application.DelegationRecord) {
	t.Helper()
	ctx := context.Background()

	storage, err := sqlite.Open(migration.DefaultSQLiteConfig(path))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = storage.Close() }()
	if _, err := storage.Migrate(ctx, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	services := testfixtures.NewServiceFactory().Build(storage)
	hr, err := services.People.CreatePerson(ctx, application.PersonInput{Name: "Hana", Role: application.RoleHR})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	record, err := services.Delegations.CreateRoot(ctx, testfixtures.RecordInput(testfixtures.NewRecord(
		testfixtures.WithAssignee(hr.ID),
		testfixtures.WithDeadline(testfixtures.ReferenceTime().Add(24*time.Hour)),
	)))
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	return hr, record
}

func TestBoardCommand(t *testing.T) {
	path := useSQLite(t)
	hr, record := seedBoard(t, path)
	now := testfixtures.ReferenceTime().Format(time.RFC3339)

	out, err := execute(t, "board", "--now", now, "-o", "json")
	if err != nil {
		t.Fatalf("board json: %v", err)
	}
	var entries []boardEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(entries) != 1 || entries[0].ID != record.ID || entries[0].Label != "Tomorrow" {
		t.Fatalf("unexpected board: %+v", entries)
	}

	out, err = execute(t, "board", "--now", now, "--output", "yaml", "--assignee", hr.ID)
	if err != nil {
		t.Fatalf("board yaml: %v", err)
	}
	var fromYAML []boardEntry
	if err := yaml.Unmarshal([]byte(out), &fromYAML); err != nil {
		t.Fatalf("decode yaml %q: %v", out, err)
	}
	if len(fromYAML) != 1 || fromYAML[0].AssignedTo != hr.ID || fromYAML[0].Kind != "tomorrow" {
		t.Fatalf("unexpected yaml board: %+v", fromYAML)
	}

	out, err = execute(t, "board", "--now", now)
	if err != nil {
		t.Fatalf("board table: %v", err)
	}
	if !strings.HasPrefix(out, "ID") || !strings.Contains(out, record.ID) || !strings.Contains(out, "Tomorrow") {
		t.Fatalf("unexpected table: %q", out)
	}

	out, err = execute(t, "board", "--now", now, "--assignee", "nobody")
	if err != nil {
		t.Fatalf("board empty: %v", err)
	}
	if out != "No delegation records.\n" {
		t.Fatalf("expected empty board, got %q", out)
	}

	if _, err := execute(t, "board", "-o", "xml"); err == nil {
		t.Fatal("expected unknown output to fail")
	}
}
