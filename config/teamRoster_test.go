package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTeamRosterIsValid(t *testing.T) {
	roster := DefaultTeamRoster()
	if err := roster.Validate(); err != nil {
		t.Fatalf("default roster invalid: %v", err)
	}
	order := roster.LeadOrder()
	expected := []string{"068 641 1128", "069 043 3247", "069 068 2819", "069 066 2955"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d leads, got %d", len(expected), len(order))
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("lead %d expected %q, got %q", i, expected[i], order[i])
		}
	}
}

func TestTeamRosterValidate_RejectsSharedMember(t *testing.T) {
	roster := &TeamRoster{Leads: []TeamLead{
		{Key: "A", Members: []string{"Alice", "Bob"}},
		{Key: "B", Members: []string{"bob (temp)", "Carol"}},
	}}
	err := roster.Validate()
	if err == nil {
		t.Fatalf("expected error for member in two teams")
	}
	if !strings.Contains(err.Error(), "belongs to both") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTeamRosterValidate_AllowsRepeatWithinTeam(t *testing.T) {
	roster := &TeamRoster{Leads: []TeamLead{
		{Key: "A", Members: []string{"Alice", "alice"}},
	}}
	if err := roster.Validate(); err != nil {
		t.Fatalf("expected repeat within one team to be accepted, got %v", err)
	}
}

func TestTeamRosterValidate_RejectsDuplicateLead(t *testing.T) {
	roster := &TeamRoster{Leads: []TeamLead{
		{Key: "A", Members: []string{"Alice"}},
		{Key: "A", Members: []string{"Bob"}},
	}}
	if err := roster.Validate(); err == nil {
		t.Fatalf("expected error for duplicate lead")
	}
}

func TestTeamRosterValidate_RequiredFields(t *testing.T) {
	cases := []*TeamRoster{
		nil,
		{},
		{Leads: []TeamLead{{Key: "", Members: []string{"Alice"}}}},
		{Leads: []TeamLead{{Key: "A"}}},
		{Leads: []TeamLead{{Key: "A", Members: []string{""}}}},
	}
	for i, roster := range cases {
		if err := roster.Validate(); err == nil {
			t.Fatalf("case %d expected validation error", i)
		}
	}
}

func TestLoadTeamRoster_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	data := `leads:
  - key: "Lead One"
    members: ["Alice", "Bob"]
  - key: "Lead Two"
    members:
      - Carol
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	roster, err := LoadTeamRoster(path)
	if err != nil {
		t.Fatalf("LoadTeamRoster: %v", err)
	}
	if got := roster.LeadOrder(); len(got) != 2 || got[0] != "Lead One" || got[1] != "Lead Two" {
		t.Fatalf("unexpected lead order %v", got)
	}
	if got := roster.Leads[0].Members; len(got) != 2 || got[1] != "Bob" {
		t.Fatalf("unexpected members %v", got)
	}
}

func TestLoadTeamRoster_EmptyPathIsDefault(t *testing.T) {
	roster, err := LoadTeamRoster("")
	if err != nil {
		t.Fatalf("LoadTeamRoster: %v", err)
	}
	if len(roster.Leads) != len(DefaultTeamRoster().Leads) {
		t.Fatalf("expected default roster")
	}
}

func TestLoadTeamRoster_Errors(t *testing.T) {
	if _, err := LoadTeamRoster(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "dup.yaml")
	data := "leads:\n  - key: A\n    members: [x]\n  - key: B\n    members: [X]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	if _, err := LoadTeamRoster(path); err == nil {
		t.Fatalf("expected error for shared member")
	}
}

func TestDatabaseSettingsDSN(t *testing.T) {
	tcp := DatabaseSettings{Host: "db", Port: "3307", User: "u", Password: "p", Name: "salesync"}.DSN()
	if !strings.Contains(tcp, "tcp(db:3307)/salesync") || !strings.Contains(tcp, "parseTime=true") {
		t.Fatalf("unexpected tcp dsn %q", tcp)
	}
	unix := DatabaseSettings{Host: "/cloudsql/proj:region:inst", User: "u", Name: "salesync"}.DSN()
	if !strings.Contains(unix, "unix(/cloudsql/proj:region:inst)/salesync") {
		t.Fatalf("unexpected unix dsn %q", unix)
	}
}

func TestSchemaOverridesFromEnv(t *testing.T) {
	t.Setenv("SALESYNC_TABLE_USERS", " members ")
	t.Setenv("SALESYNC_CHECKINS_TIME_COLUMN", "visited_on")
	o := SchemaOverridesFromEnv()
	if o.UsersTable != "members" || o.CheckinsTimeColumn != "visited_on" || o.CheckinsTable != "" {
		t.Fatalf("unexpected overrides %+v", o)
	}
}
