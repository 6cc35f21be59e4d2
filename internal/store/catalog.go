package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dew-13/solestyle/internal/database"
	"github.com/dew-13/solestyle/internal/models"
)

const catalogColumns = `id, item_type, name, brand, image, sizes, price, retail_price, profit, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatalogItem(row rowScanner) (*models.CatalogItem, error) {
	item := &models.CatalogItem{}
	var sizes pq.StringArray
	err := row.Scan(
		&item.ID,
		&item.Type,
		&item.Name,
		&item.Brand,
		&item.Image,
		&sizes,
		&item.Price,
		&item.RetailPrice,
		&item.Profit,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Sizes = []string(sizes)
	return item, nil
}

func CreateCatalogItem(ctx context.Context, db database.Querier, item *models.CatalogItem) (*models.CatalogItem, error) {
	id := item.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO catalog_items (id, item_type, name, brand, image, sizes, price, retail_price, profit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + catalogColumns

	created, err := scanCatalogItem(db.QueryRowContext(ctx, query,
		id, item.Type, item.Name, item.Brand, item.Image, pq.Array(item.Sizes),
		item.Price, item.RetailPrice, item.Profit))
	if err != nil {
		return nil, fmt.Errorf("create catalog item: %w", err)
	}

	return created, nil
}

func GetCatalogItem(ctx context.Context, db database.Querier, itemType models.ItemType, id string) (*models.CatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items WHERE item_type = $1 AND id = $2`

	item, err := scanCatalogItem(db.QueryRowContext(ctx, query, itemType, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCatalogItemNotFound
		}
		return nil, fmt.Errorf("get catalog item: %w", err)
	}

	return item, nil
}

func UpdateCatalogItem(ctx context.Context, db database.Querier, item *models.CatalogItem) (*models.CatalogItem, error) {
	query := `
		UPDATE catalog_items
		SET name = $3, brand = $4, image = $5, sizes = $6,
		    price = $7, retail_price = $8, profit = $9, updated_at = NOW()
		WHERE item_type = $1 AND id = $2
		RETURNING ` + catalogColumns

	updated, err := scanCatalogItem(db.QueryRowContext(ctx, query,
		item.Type, item.ID, item.Name, item.Brand, item.Image, pq.Array(item.Sizes),
		item.Price, item.RetailPrice, item.Profit))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCatalogItemNotFound
		}
		return nil, fmt.Errorf("update catalog item: %w", err)
	}

	return updated, nil
}

func DeleteCatalogItem(ctx context.Context, db database.Querier, itemType models.ItemType, id string) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM catalog_items WHERE item_type = $1 AND id = $2`, itemType, id)
	if err != nil {
		return fmt.Errorf("delete catalog item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrCatalogItemNotFound
	}

	return nil
}

func ListCatalogItems(ctx context.Context, db database.Querier, itemType models.ItemType, page, pageSize int) (*OffsetPage[models.CatalogItem], error) {
	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM catalog_items WHERE item_type = $1`, itemType).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count catalog items: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + catalogColumns + `
		FROM catalog_items
		WHERE item_type = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := db.QueryContext(ctx, query, itemType, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	items := []models.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &OffsetPage[models.CatalogItem]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}
