package reports

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// InformationSchemaCatalog reads structure of the connected database
// (DATABASE()) from information_schema.
type InformationSchemaCatalog struct {
	db *gorm.DB
}

func NewInformationSchemaCatalog(db *gorm.DB) *InformationSchemaCatalog {
	return &InformationSchemaCatalog{db: db}
}

func (c *InformationSchemaCatalog) conn(ctx context.Context) (*gorm.DB, error) {
	if c == nil || c.db == nil {
		return nil, errors.New("database is not connected")
	}
	return c.db.WithContext(ctx), nil
}

func (c *InformationSchemaCatalog) TableExists(ctx context.Context, table string) (bool, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return false, err
	}
	var count int64
	if err := db.Raw(`
SELECT COUNT(*) FROM information_schema.tables
WHERE table_schema = DATABASE() AND table_name = ?`, table).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c *InformationSchemaCatalog) PrimaryKeyColumn(ctx context.Context, table string) (string, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return "", err
	}
	var names []string
	if err := db.Raw(`
SELECT COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
ORDER BY ORDINAL_POSITION
LIMIT 1`, table).Scan(&names).Error; err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}

func (c *InformationSchemaCatalog) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	var cols []ColumnInfo
	if err := db.Raw(`
SELECT COLUMN_NAME AS name, DATA_TYPE AS data_type FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`, table).Scan(&cols).Error; err != nil {
		return nil, err
	}
	return cols, nil
}

func (c *InformationSchemaCatalog) ForeignKeyColumn(ctx context.Context, table string, referencedTable string) (string, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return "", err
	}
	var names []string
	if err := db.Raw(`
SELECT COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND REFERENCED_TABLE_NAME = ?
ORDER BY ORDINAL_POSITION
LIMIT 1`, table, referencedTable).Scan(&names).Error; err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}
