package rowstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jimdaga/wellness-checkin/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Database is a Store that keeps every logical table in the sheet_rows table.
// Tables are implicit: reading an unknown table returns no rows.
type Database struct {
	db *gorm.DB
}

// NewDatabase wraps an open gorm connection. Migrations must have run.
func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// Read returns the rows of table ordered by insertion
func (d *Database) Read(ctx context.Context, table string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	var rows []models.SheetRow
	if err := d.db.WithContext(ctx).Where("sheet = ?", table).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		var cells []string
		if err := json.Unmarshal(r.Cells, &cells); err != nil {
			return nil, fmt.Errorf("failed to decode row %d of %s: %w", r.ID, table, err)
		}
		out = append(out, cells)
	}
	return out, nil
}

// Append inserts row at the end of table
func (d *Database) Append(ctx context.Context, table string, row []string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	cells, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	rec := models.SheetRow{Sheet: table, Cells: datatypes.JSON(cells)}
	if err := d.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to append to table %s: %w", table, err)
	}
	return nil
}

// DeleteRow hard-deletes the row at position index (0 is the header)
func (d *Database) DeleteRow(ctx context.Context, table string, index int) error {
	if index < 0 {
		return fmt.Errorf("delete row %d from %s: %w", index, table, ErrRowOutOfRange)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.SheetRow
		result := tx.Where("sheet = ?", table).Order("id").Offset(index).Limit(1).Find(&target)
		if result.Error != nil {
			return fmt.Errorf("failed to locate row %d of %s: %w", index, table, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete row %d from %s: %w", index, table, ErrRowOutOfRange)
		}

		if err := tx.Delete(&models.SheetRow{}, target.ID).Error; err != nil {
			return fmt.Errorf("failed to delete row %d of %s: %w", index, table, err)
		}
		return nil
	})
}
