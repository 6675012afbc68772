package store

import (
	"context"
	"fmt"
	sq "github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/constants"
)

var priceColumns = []string{"brand", "article", "price", "description", "provider_id", "rests", "loaded_id"}

// InsertPrices пишет все строки одним запросом: либо все, либо ничего.
func (s *store) InsertPrices(ctx context.Context, rows []domain.PriceRow) error {
	if len(rows) == 0 {
		return nil
	}
	if len(rows)*len(priceColumns) > maxQueryParams {
		return fmt.Errorf("%d rows: %w", len(rows), constants.ErrPayloadTooLarge)
	}

	query := builder().Insert(tablePrices).
		Columns(priceColumns...)

	for _, row := range rows {
		rests, err := sonic.ConfigStd.MarshalToString(row.Rests)
		if err != nil {
			return fmt.Errorf("failed to marshal rests: %w", err)
		}

		query = query.Values(row.Brand, row.Article, row.Price, row.Description, row.ProviderID, rests, row.LoadedID)
	}

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return err
	}

	return nil
}

// DeletePrices удаляет строки, оставшиеся от недогруженного снапшота.
func (s *store) DeletePrices(ctx context.Context, loadedID string) (int64, error) {
	query := builder().Delete(tablePrices).
		Where(sq.Eq{"loaded_id": loadedID})

	tag, err := s.pool.Execx(ctx, query)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
