package config

import (
	"os"
	"strings"
)

// SchemaOverrides pins table and column names that would otherwise be
// inferred from information_schema. Empty fields mean "infer".
//
// Set via env:
// - SALESYNC_TABLE_USERS, SALESYNC_USERS_PK, SALESYNC_USERS_NAME_COLUMN
// - SALESYNC_TABLE_CHECKINS, SALESYNC_CHECKINS_PK
// - SALESYNC_CHECKINS_USER_ID_COLUMN, SALESYNC_CHECKINS_TIME_COLUMN
// - SALESYNC_TABLE_VISIT_RESPONSE, SALESYNC_VISIT_RESPONSE_CHECKIN_ID_COLUMN
// - SALESYNC_VISIT_RESPONSE_RESPONSES_COLUMN
type SchemaOverrides struct {
	UsersTable                string
	UsersPK                   string
	UsersNameColumn           string
	CheckinsTable             string
	CheckinsPK                string
	CheckinsUserIDColumn      string
	CheckinsTimeColumn        string
	VisitResponseTable        string
	VisitResponseCheckinID    string
	VisitResponseResponsesCol string
}

func SchemaOverridesFromEnv() SchemaOverrides {
	return SchemaOverrides{
		UsersTable:                envTrim("SALESYNC_TABLE_USERS"),
		UsersPK:                   envTrim("SALESYNC_USERS_PK"),
		UsersNameColumn:           envTrim("SALESYNC_USERS_NAME_COLUMN"),
		CheckinsTable:             envTrim("SALESYNC_TABLE_CHECKINS"),
		CheckinsPK:                envTrim("SALESYNC_CHECKINS_PK"),
		CheckinsUserIDColumn:      envTrim("SALESYNC_CHECKINS_USER_ID_COLUMN"),
		CheckinsTimeColumn:        envTrim("SALESYNC_CHECKINS_TIME_COLUMN"),
		VisitResponseTable:        envTrim("SALESYNC_TABLE_VISIT_RESPONSE"),
		VisitResponseCheckinID:    envTrim("SALESYNC_VISIT_RESPONSE_CHECKIN_ID_COLUMN"),
		VisitResponseResponsesCol: envTrim("SALESYNC_VISIT_RESPONSE_RESPONSES_COLUMN"),
	}
}

// ReportsDir is the root of the on-disk report archive.
//
// Set via env:
// - REPORTS_DIR (default "reports")
func ReportsDir() string {
	if v := envTrim("REPORTS_DIR"); v != "" {
		return v
	}
	return "reports"
}

func envTrim(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
