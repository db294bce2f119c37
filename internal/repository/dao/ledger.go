package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrRowExists = errors.New("ledger row already exists")

// LedgerRow mirrors one spreadsheet row in Postgres. RowKey is unique per
// range so a registration appended twice is stored once; rows without a key
// are never considered duplicates.
type LedgerRow struct {
	ID uint `gorm:"primaryKey"`

	Range  string   `gorm:"column:sheet_range;not null;uniqueIndex:idx_ledger_rows_range_key"`
	RowKey *string  `gorm:"uniqueIndex:idx_ledger_rows_range_key"`
	Cells  []string `gorm:"serializer:json;not null"`

	CreatedAt time.Time `gorm:"not null"`
}

type LedgerRowDAO struct {
	db *gorm.DB
}

func NewLedgerRowDAO(db *gorm.DB) *LedgerRowDAO {
	return &LedgerRowDAO{
		db: db,
	}
}

func (d *LedgerRowDAO) AppendRow(ctx context.Context, rangeName, key string, cells []string) error {
	row := LedgerRow{
		Range: rangeName,
		Cells: cells,
	}
	if key != "" {
		row.RowKey = &key
	}

	result := d.db.WithContext(ctx).Create(&row)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			return ErrRowExists
		}

		return result.Error
	}

	return nil
}

func (d *LedgerRowDAO) FindByRange(ctx context.Context, rangeName string) ([]LedgerRow, error) {
	var rows []LedgerRow
	result := d.db.WithContext(ctx).Where("sheet_range = ?", rangeName).Order("id").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}
