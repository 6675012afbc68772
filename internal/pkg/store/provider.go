package store

import (
	"context"
	"fmt"
	sq "github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/logger"
	"strings"
)

type ProviderStore interface {
	ListWarehouses(ctx context.Context, providerID string) ([]*domain.Warehouse, error)
	SaveTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error)
	GetLatestTemplate(ctx context.Context, providerID string) (*domain.Template, error)
}

var (
	warehouseColumns = []string{"id", "provider_id", "name"}
	templateColumns  = []string{"id", "provider_id", "name", "first_row_headers", "rows", "created_at", "updated_at"}
)

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

func (s *store) ListWarehouses(ctx context.Context, providerID string) ([]*domain.Warehouse, error) {
	query := builder().Select(warehouseColumns...).
		From(tableWarehouses).
		Where(sq.Eq{"provider_id": providerID}).
		OrderBy("name")

	var selected []*domain.Warehouse
	if err := s.pool.Selectx(ctx, &selected, query); err != nil {
		logger.Error(ctx, err.Error())
		return nil, err
	}

	return selected, nil
}

func (s *store) SaveTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	rows, err := sonic.ConfigStd.MarshalToString(template.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template rows: %w", err)
	}

	query := builder().Insert(tableTemplates).
		Columns("provider_id", "name", "first_row_headers", "rows").
		Values(template.ProviderID, template.Name, template.FirstRowHeaders, rows).
		Suffix(`
on conflict (provider_id, name)
do update
set
	first_row_headers = excluded.first_row_headers,
	rows = excluded.rows,
	updated_at = now()`)

	if _, err = s.pool.Execx(ctx, query); err != nil {
		logger.Errorf(ctx, "insert template: %s", err.Error())
		return nil, err
	}

	selectQuery := builder().Select(templateColumns...).
		From(tableTemplates).
		Where(sq.And{
			sq.Eq{"provider_id": template.ProviderID},
			sq.Eq{"name": template.Name},
		})

	var selected domain.Template
	if err = s.pool.Getx(ctx, &selected, selectQuery); err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}

func (s *store) GetLatestTemplate(ctx context.Context, providerID string) (*domain.Template, error) {
	query := builder().Select(templateColumns...).
		From(tableTemplates).
		Where(sq.Eq{"provider_id": providerID}).
		OrderBy("updated_at desc").
		Limit(1)

	var selected domain.Template
	if err := s.pool.Getx(ctx, &selected, query); err != nil {
		return nil, wrapErr(err)
	}

	return &selected, nil
}
