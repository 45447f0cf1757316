package models

import (
	"time"

	"gorm.io/datatypes"
)

// SheetRow stores one row of a logical table in the database row store.
// Row position within a sheet is the ordering by ID; rows are hard-deleted
// so positions stay dense.
type SheetRow struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	Sheet     string         `gorm:"not null;index"`
	Cells     datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
}

// TableName pins the table name used by the migrations
func (SheetRow) TableName() string {
	return "sheet_rows"
}
