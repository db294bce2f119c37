package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietanh2810/registration-api/internal/domain"
	"github.com/vietanh2810/registration-api/internal/repository/dao"
)

var ErrRowExists = dao.ErrRowExists

type LedgerDAO interface {
	AppendRow(ctx context.Context, rangeName, key string, cells []string) error
}

type LedgerRepository struct {
	dao       LedgerDAO
	rangeName string
}

func NewLedgerRepository(dao LedgerDAO, rangeName string) *LedgerRepository {
	return &LedgerRepository{
		dao:       dao,
		rangeName: rangeName,
	}
}

// Append writes row to the configured range. A row the store already holds
// counts as appended.
func (r *LedgerRepository) Append(ctx context.Context, row domain.LedgerRow) error {
	err := r.dao.AppendRow(ctx, r.rangeName, row.Key, row.Cells)
	if err != nil {
		if errors.Is(err, dao.ErrRowExists) {
			zap.L().Info("ledger row already present, skipping",
				zap.String("range", r.rangeName), zap.String("key", row.Key))
			return nil
		}

		return fmt.Errorf("r.dao.AppendRow -> %w", err)
	}

	return nil
}
