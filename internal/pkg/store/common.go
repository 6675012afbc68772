package store

import (
	"errors"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/ougirez/pricelist/internal/pkg/constants"
)

const (
	tableLoaded     = "loaded"
	tableHistory    = "price_history"
	tablePrices     = "prices"
	tableTemplates  = "provider_template"
	tableWarehouses = "warehouses"
)

// лимит параметров в extended protocol постгреса
const maxQueryParams = 65535

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder возвращает squirrel SQL Builder обьект.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
