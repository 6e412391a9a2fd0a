package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/salesync/reports_backend/utils"
	"gopkg.in/yaml.v3"
)

// TeamLead is one team: the lead's key (a phone number in practice) and the
// ordered phone numbers of its members.
type TeamLead struct {
	Key     string   `yaml:"key" json:"key" validate:"required"`
	Members []string `yaml:"members" json:"members" validate:"required,min=1,dive,required"`
}

// TeamRoster is the ordered list of teams. The order of Leads is the column
// order of every team report.
type TeamRoster struct {
	Leads []TeamLead `yaml:"leads" json:"leads" validate:"required,min=1,dive"`
}

var rosterValidate = validator.New()

func DefaultTeamRoster() *TeamRoster {
	return &TeamRoster{
		Leads: []TeamLead{
			{
				Key: "068 641 1128",
				Members: []string{
					"069 067 6463",
					"069 069 8934",
					"068 617 5687",
					"068 616 1031",
					"068 641 1128",
				},
			},
			{
				Key: "069 043 3247",
				Members: []string{
					"063 901 9701",
					"069 027 3894",
					"068 907 8688",
					"069 034 4500",
					"069 033 8517",
					"069 043 3247",
				},
			},
			{
				Key: "069 068 2819",
				Members: []string{
					"068 639 0928",
					"069 067 7526",
					"069 027 9986",
					"069 062 5752",
					"069 052 7867",
					"069 068 2819",
				},
			},
			{
				Key: "069 066 2955",
				Members: []string{
					"068 609 0618",
					"063 905 0286",
					"069 058 4391",
					"069 069 7103",
					"068 602 7701",
					"069 066 2955",
				},
			},
		},
	}
}

// TeamRosterFromEnv loads the roster named by TEAM_ROSTER_FILE, or the
// built-in roster when the variable is unset.
func TeamRosterFromEnv() (*TeamRoster, error) {
	return LoadTeamRoster(strings.TrimSpace(os.Getenv("TEAM_ROSTER_FILE")))
}

// LoadTeamRoster reads a YAML roster of the form
//
//	leads:
//	  - key: "068 641 1128"
//	    members: ["069 067 6463", "068 641 1128"]
//
// An empty path yields the built-in roster. The result is always validated.
func LoadTeamRoster(path string) (*TeamRoster, error) {
	roster := DefaultTeamRoster()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read team roster: %w", err)
		}
		roster = &TeamRoster{}
		if err := yaml.Unmarshal(data, roster); err != nil {
			return nil, fmt.Errorf("unmarshal team roster: %w", err)
		}
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	for _, w := range roster.PhoneWarnings(rosterPhoneRegion()) {
		logg.WithField("module", "config").Warn(w)
	}
	return roster, nil
}

// Validate checks required fields and that no member (compared by its
// normalized form) or lead key appears in more than one team.
func (r *TeamRoster) Validate() error {
	if r == nil {
		return errors.New("team roster is nil")
	}
	if err := rosterValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid team roster: %w", err)
	}
	leads := make(map[string]bool, len(r.Leads))
	owner := make(map[string]string)
	for _, lead := range r.Leads {
		if leads[lead.Key] {
			return fmt.Errorf("invalid team roster: lead %q listed twice", lead.Key)
		}
		leads[lead.Key] = true
		seen := make(map[string]bool, len(lead.Members))
		for _, member := range lead.Members {
			norm := utils.NormalizeNameForMatch(member)
			if seen[norm] {
				continue
			}
			seen[norm] = true
			if prev, ok := owner[norm]; ok {
				return fmt.Errorf("invalid team roster: member %q belongs to both %q and %q", member, prev, lead.Key)
			}
			owner[norm] = lead.Key
		}
	}
	return nil
}

// LeadOrder returns lead keys in report column order.
func (r *TeamRoster) LeadOrder() []string {
	order := make([]string, 0, len(r.Leads))
	for _, lead := range r.Leads {
		order = append(order, lead.Key)
	}
	return order
}

// PhoneWarnings lists members that do not parse as valid numbers for region.
// Members are matched as display names, so these are advisory only.
func (r *TeamRoster) PhoneWarnings(region string) []string {
	var warnings []string
	for _, lead := range r.Leads {
		for _, member := range lead.Members {
			if err := utils.ValidatePhoneNumber(member, region); err != nil {
				warnings = append(warnings, fmt.Sprintf("team %s: member %q is not a valid %s phone number: %v", lead.Key, member, region, err))
			}
		}
	}
	return warnings
}

// Set via env:
// - ROSTER_PHONE_REGION (default "ZA")
func rosterPhoneRegion() string {
	if v := envTrim("ROSTER_PHONE_REGION"); v != "" {
		return strings.ToUpper(v)
	}
	return "ZA"
}
