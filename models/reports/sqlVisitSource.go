package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/salesync/reports_backend/config"
	"gorm.io/gorm"
)

// VisitSource streams the rows the reports are built from. Each call yields
// its rows to fn exactly once, in query order; a non-nil error from fn stops
// the stream and is returned.
type VisitSource interface {
	EachDailyVisit(ctx context.Context, rng DateRange, fn func(DailyVisitRecord) error) error
	EachVisitResponse(ctx context.Context, rng DateRange, fn func(VisitResponseRecord) error) error
}

// SQLVisitSource reads from MySQL, inferring the schema on every call.
type SQLVisitSource struct {
	getDB     func() *gorm.DB
	overrides config.SchemaOverrides
}

// NewSQLVisitSource resolves the connection through getDB at call time so a
// source can be built before the database is reachable.
func NewSQLVisitSource(getDB func() *gorm.DB, overrides config.SchemaOverrides) *SQLVisitSource {
	return &SQLVisitSource{getDB: getDB, overrides: overrides}
}

func (s *SQLVisitSource) db() (*gorm.DB, error) {
	if s.getDB == nil {
		return nil, errors.New("database is not connected")
	}
	db := s.getDB()
	if db == nil {
		return nil, errors.New("database is not connected")
	}
	return db, nil
}

func (s *SQLVisitSource) schemaCatalog(db *gorm.DB) SchemaCatalog {
	return NewInformationSchemaCatalog(db)
}

func (s *SQLVisitSource) earliestCheckin(ctx context.Context, db *gorm.DB, schema *VisitSchema) (*sql.NullTime, error) {
	query, err := BuildEarliestCheckinQuery(schema)
	if err != nil {
		return nil, err
	}
	var earliest sql.NullTime
	if err := db.WithContext(ctx).Raw(query).Row().Scan(&earliest); err != nil {
		return nil, fmt.Errorf("earliest check-in: %w", err)
	}
	return &earliest, nil
}

// withDefaultStart fills an open start bound with the first check-in date.
func (s *SQLVisitSource) withDefaultStart(ctx context.Context, db *gorm.DB, schema *VisitSchema, rng DateRange) (DateRange, error) {
	if rng.Start != nil {
		return rng, nil
	}
	earliest, err := s.earliestCheckin(ctx, db, schema)
	if err != nil {
		return rng, err
	}
	if earliest.Valid {
		d := dateOnly(earliest.Time)
		rng.Start = &d
	}
	return rng, nil
}

func (s *SQLVisitSource) EachDailyVisit(ctx context.Context, rng DateRange, fn func(DailyVisitRecord) error) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	schema, err := InspectVisitSchema(ctx, s.schemaCatalog(db), s.overrides, false)
	if err != nil {
		return err
	}
	if rng, err = s.withDefaultStart(ctx, db, schema, rng); err != nil {
		return err
	}
	query, params, err := BuildDailyVisitsQuery(schema, rng)
	if err != nil {
		return err
	}
	rows, err := db.WithContext(ctx).Raw(query, params).Rows()
	if err != nil {
		return fmt.Errorf("daily visits query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name  sql.NullString
			date  sql.NullTime
			total int64
		)
		if err := rows.Scan(&name, &date, &total); err != nil {
			return err
		}
		if !date.Valid {
			continue
		}
		if err := fn(DailyVisitRecord{UserName: name.String, VisitDate: dateOnly(date.Time), TotalVisits: int(total)}); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLVisitSource) EachVisitResponse(ctx context.Context, rng DateRange, fn func(VisitResponseRecord) error) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	schema, err := InspectVisitSchema(ctx, s.schemaCatalog(db), s.overrides, true)
	if err != nil {
		return err
	}
	if rng, err = s.withDefaultStart(ctx, db, schema, rng); err != nil {
		return err
	}
	query, params, err := BuildVisitDetailsQuery(schema, rng)
	if err != nil {
		return err
	}
	rows, err := db.WithContext(ctx).Raw(query, params).Rows()
	if err != nil {
		return fmt.Errorf("visit details query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name      sql.NullString
			date      sql.NullTime
			responses sql.NullString
		)
		if err := rows.Scan(&name, &date, &responses); err != nil {
			return err
		}
		if !date.Valid {
			continue
		}
		if err := fn(VisitResponseRecord{UserName: name.String, VisitDate: dateOnly(date.Time), Responses: responses.String}); err != nil {
			return err
		}
	}
	return rows.Err()
}
