package reports

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/salesync/reports_backend/config"
)

var (
	ErrTableNotFound             = errors.New("table not found")
	ErrNoColumns                 = errors.New("table has no columns")
	ErrVisitResponseTableMissing = errors.New("visit response table not found")
	ErrUnknownTeamLead           = errors.New("unknown team lead")
)

// ColumnInfo is one information_schema column, in ordinal order.
type ColumnInfo struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

// SchemaCatalog answers the structural questions inference needs about the
// current database.
type SchemaCatalog interface {
	TableExists(ctx context.Context, table string) (bool, error)
	// PrimaryKeyColumn returns the first primary key column, or "" when the
	// table has none.
	PrimaryKeyColumn(ctx context.Context, table string) (string, error)
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)
	// ForeignKeyColumn returns the first column of table referencing
	// referencedTable, or "".
	ForeignKeyColumn(ctx context.Context, table string, referencedTable string) (string, error)
}

// TableSnapshot is what inference sees of one table. Resolvers are pure
// functions over it.
type TableSnapshot struct {
	Name       string
	Columns    []ColumnInfo
	PrimaryKey string
	// ForeignKeys maps a referenced table to the first referencing column.
	ForeignKeys map[string]string
}

// LoadTableSnapshot reads columns, primary key and the foreign keys towards
// each of referenced.
func LoadTableSnapshot(ctx context.Context, catalog SchemaCatalog, table string, referenced ...string) (*TableSnapshot, error) {
	cols, err := catalog.Columns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	pk, err := catalog.PrimaryKeyColumn(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("primary key of %s: %w", table, err)
	}
	snapshot := &TableSnapshot{
		Name:        table,
		Columns:     cols,
		PrimaryKey:  pk,
		ForeignKeys: make(map[string]string, len(referenced)),
	}
	for _, ref := range referenced {
		col, err := catalog.ForeignKeyColumn(ctx, table, ref)
		if err != nil {
			return nil, fmt.Errorf("foreign key %s -> %s: %w", table, ref, err)
		}
		if col != "" {
			snapshot.ForeignKeys[ref] = col
		}
	}
	return snapshot, nil
}

func (s *TableSnapshot) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (s *TableSnapshot) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		names = append(names, c.Name)
	}
	return names
}

// ColumnResolver proposes a column name (or SQL expression) for one inference
// step. The first resolver that answers wins.
type ColumnResolver func(s *TableSnapshot) (string, bool)

func resolveFirst(s *TableSnapshot, resolvers ...ColumnResolver) (string, bool) {
	for _, r := range resolvers {
		if v, ok := r(s); ok {
			return v, true
		}
	}
	return "", false
}

// fixedValue answers v unless it is empty. Used for overrides and defaults.
func fixedValue(v string) ColumnResolver {
	return func(*TableSnapshot) (string, bool) {
		return v, v != ""
	}
}

// exactColumn answers the first candidate, in candidate order, that exists
// with exactly that name.
func exactColumn(candidates ...string) ColumnResolver {
	return func(s *TableSnapshot) (string, bool) {
		for _, c := range candidates {
			if s.HasColumn(c) {
				return c, true
			}
		}
		return "", false
	}
}

// firstColumnWhere answers the first column, in ordinal order, accepted by
// match.
func firstColumnWhere(match func(c ColumnInfo) bool) ColumnResolver {
	return func(s *TableSnapshot) (string, bool) {
		for _, c := range s.Columns {
			if match(c) {
				return c.Name, true
			}
		}
		return "", false
	}
}

func firstColumn() ColumnResolver {
	return firstColumnWhere(func(ColumnInfo) bool { return true })
}

func primaryKey() ColumnResolver {
	return func(s *TableSnapshot) (string, bool) {
		return s.PrimaryKey, s.PrimaryKey != ""
	}
}

func foreignKeyTo(table string) ColumnResolver {
	return func(s *TableSnapshot) (string, bool) {
		col, ok := s.ForeignKeys[table]
		return col, ok && col != ""
	}
}

// asUserColumn turns a resolved column into a qualified u.`col` expression.
func asUserColumn(r ColumnResolver) ColumnResolver {
	return func(s *TableSnapshot) (string, bool) {
		col, ok := r(s)
		if !ok {
			return "", false
		}
		return "u." + quoteIdentifier(col), true
	}
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

var (
	usersTableCandidates         = []string{"users", "user"}
	checkinsTableCandidates      = []string{"checkins", "visits"}
	visitResponseTableCandidates = []string{"visit_response", "visit_responses"}

	userNameColumns = []string{"name", "full_name", "display_name", "username", "user_name"}

	checkinTimeColumns = []string{
		"checkin_time", "check_in_time", "visited_at", "visit_time", "visit_date",
		"checkin_at", "created_at", "created_on", "time_in", "time", "date",
	}

	responsesColumns = []string{
		"responses", "response", "answers", "payload", "data",
		"form_response", "form_data", "json",
	}
)

// ResolveTableName returns the first candidate that exists. Empty candidates
// are skipped.
func ResolveTableName(ctx context.Context, catalog SchemaCatalog, candidates ...string) (string, bool, error) {
	for _, name := range candidates {
		if name == "" {
			continue
		}
		ok, err := catalog.TableExists(ctx, name)
		if err != nil {
			return "", false, err
		}
		if ok {
			return name, true, nil
		}
	}
	return "", false, nil
}

func usersNameResolvers(override string) []ColumnResolver {
	return []ColumnResolver{
		asUserColumn(fixedValue(override)),
		asUserColumn(exactColumn(userNameColumns...)),
		func(s *TableSnapshot) (string, bool) {
			if s.HasColumn("first_name") && s.HasColumn("last_name") {
				return "CONCAT_WS(' ', u." + quoteIdentifier("first_name") + ", u." + quoteIdentifier("last_name") + ")", true
			}
			return "", false
		},
		asUserColumn(firstColumnWhere(func(c ColumnInfo) bool {
			return strings.Contains(strings.ToLower(c.Name), "name")
		})),
		func(s *TableSnapshot) (string, bool) {
			pk, _ := resolveFirst(s, primaryKey(), fixedValue("id"))
			return "CAST(u." + quoteIdentifier(pk) + " AS CHAR)", true
		},
	}
}

// InferUsersNameExpr returns the SQL expression (alias u) used as a user's
// display name. It always produces an expression.
func InferUsersNameExpr(users *TableSnapshot, override string) string {
	expr, _ := resolveFirst(users, usersNameResolvers(override)...)
	return expr
}

// CheckinsColumns are the inferred check-in table columns.
type CheckinsColumns struct {
	PK     string
	UserID string
	Time   string
}

func isDateLike(c ColumnInfo) bool {
	switch strings.ToLower(c.DataType) {
	case "datetime", "timestamp", "date":
		return true
	}
	return false
}

func checkinTimeColumn() ColumnResolver {
	return func(s *TableSnapshot) (string, bool) {
		for _, c := range s.Columns {
			if isDateLike(c) && slices.Contains(checkinTimeColumns, strings.ToLower(c.Name)) {
				return c.Name, true
			}
		}
		return "", false
	}
}

// InferCheckinsColumns resolves the check-in primary key, user reference and
// timestamp. It fails only when the user reference has nothing to fall back
// on, i.e. the table has no columns at all.
func InferCheckinsColumns(checkins *TableSnapshot, usersTable string, overrides config.SchemaOverrides) (CheckinsColumns, error) {
	var out CheckinsColumns
	out.PK, _ = resolveFirst(checkins, fixedValue(overrides.CheckinsPK), primaryKey(), fixedValue("id"))

	userID, ok := resolveFirst(checkins,
		fixedValue(overrides.CheckinsUserIDColumn),
		foreignKeyTo(usersTable),
		firstColumnWhere(func(c ColumnInfo) bool {
			low := strings.ToLower(c.Name)
			return strings.Contains(low, "user") || strings.HasSuffix(low, "_id")
		}),
		firstColumn(),
	)
	if !ok {
		return out, fmt.Errorf("cannot infer user reference of %s (columns %v): %w", checkins.Name, checkins.ColumnNames(), ErrNoColumns)
	}
	out.UserID = userID

	out.Time, _ = resolveFirst(checkins,
		fixedValue(overrides.CheckinsTimeColumn),
		checkinTimeColumn(),
		firstColumnWhere(isDateLike),
		fixedValue("checkin_time"),
	)
	return out, nil
}

// InferVisitResponseCheckinColumn finds the visit response column that
// references a check-in.
func InferVisitResponseCheckinColumn(vr *TableSnapshot, checkinsTable string, override string) string {
	col, _ := resolveFirst(vr,
		fixedValue(override),
		foreignKeyTo(checkinsTable),
		firstColumnWhere(func(c ColumnInfo) bool {
			low := strings.ToLower(c.Name)
			if strings.Contains(low, "checkin") && strings.HasSuffix(low, "_id") {
				return true
			}
			switch low {
			case "checkin_id", "visit_id", "check_in_id":
				return true
			}
			return false
		}),
		fixedValue("checkin_id"),
	)
	return col
}

// ChooseResponsesColumn picks the column holding the JSON survey payload.
func ChooseResponsesColumn(vr *TableSnapshot, override string) (string, error) {
	col, ok := resolveFirst(vr,
		fixedValue(override),
		exactColumn(responsesColumns...),
		firstColumnWhere(func(c ColumnInfo) bool {
			switch strings.ToLower(c.DataType) {
			case "json", "text", "mediumtext", "longtext":
				return true
			}
			return false
		}),
		firstColumn(),
	)
	if !ok {
		return "", fmt.Errorf("cannot choose responses column of %s: %w", vr.Name, ErrNoColumns)
	}
	return col, nil
}

// VisitSchema is everything the report queries need to know about the
// database.
type VisitSchema struct {
	UsersTable    string
	UsersPK       string
	UsersNameExpr string
	CheckinsTable string
	Checkins      CheckinsColumns
	// VisitResponseTable is empty when the database has none.
	VisitResponseTable     string
	VisitResponseCheckinID string
	// ResponsesColumn is only set when inspecting for visit details.
	ResponsesColumn string
}

func (s *VisitSchema) HasVisitResponse() bool {
	return s.VisitResponseTable != ""
}

// InspectVisitSchema resolves tables and columns. With withResponses the
// visit response table becomes mandatory and its checkin reference and
// payload column are inferred from its structure; otherwise the reference is
// the override or "checkin_id".
func InspectVisitSchema(ctx context.Context, catalog SchemaCatalog, overrides config.SchemaOverrides, withResponses bool) (*VisitSchema, error) {
	usersTable, ok, err := ResolveTableName(ctx, catalog, append([]string{overrides.UsersTable}, usersTableCandidates...)...)
	if err != nil {
		return nil, err
	}
	if !ok {
		usersTable = usersTableCandidates[0]
	}
	checkinsTable, ok, err := ResolveTableName(ctx, catalog, append([]string{overrides.CheckinsTable}, checkinsTableCandidates...)...)
	if err != nil {
		return nil, err
	}
	if !ok {
		checkinsTable = checkinsTableCandidates[0]
	}
	vrTable, _, err := ResolveTableName(ctx, catalog, append([]string{overrides.VisitResponseTable}, visitResponseTableCandidates...)...)
	if err != nil {
		return nil, err
	}

	users, err := LoadTableSnapshot(ctx, catalog, usersTable)
	if err != nil {
		return nil, err
	}
	checkins, err := LoadTableSnapshot(ctx, catalog, checkinsTable, usersTable)
	if err != nil {
		return nil, err
	}

	schema := &VisitSchema{
		UsersTable:         usersTable,
		UsersNameExpr:      InferUsersNameExpr(users, overrides.UsersNameColumn),
		CheckinsTable:      checkinsTable,
		VisitResponseTable: vrTable,
	}
	schema.UsersPK, _ = resolveFirst(users, fixedValue(overrides.UsersPK), primaryKey(), fixedValue("id"))
	if schema.Checkins, err = InferCheckinsColumns(checkins, usersTable, overrides); err != nil {
		return nil, err
	}

	if !withResponses {
		if vrTable != "" {
			schema.VisitResponseCheckinID = overrides.VisitResponseCheckinID
			if schema.VisitResponseCheckinID == "" {
				schema.VisitResponseCheckinID = "checkin_id"
			}
		}
		return schema, nil
	}

	if vrTable == "" {
		return nil, ErrVisitResponseTableMissing
	}
	vr, err := LoadTableSnapshot(ctx, catalog, vrTable, checkinsTable)
	if err != nil {
		return nil, err
	}
	schema.VisitResponseCheckinID = InferVisitResponseCheckinColumn(vr, checkinsTable, overrides.VisitResponseCheckinID)
	if schema.ResponsesColumn, err = ChooseResponsesColumn(vr, overrides.VisitResponseResponsesCol); err != nil {
		return nil, err
	}
	return schema, nil
}
