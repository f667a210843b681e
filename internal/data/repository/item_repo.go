package repository

import (
	"context"
	"errors"
	"fmt"

	"starter-api/internal/data/entity"
	"starter-api/pkg/apperror"
	"starter-api/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	FindAll(ctx context.Context, offset, limit int) ([]*entity.Item, error)
	FindByOwner(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type itemRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewItemRepository(db database.PgxIface, log *zap.Logger) ItemRepository {
	return &itemRepository{
		db:  db,
		log: log.With(zap.String("repository", "item")),
	}
}

const itemColumns = `id, title, description, user_id, created_at, updated_at`

func scanItem(row scanner) (*entity.Item, error) {
	var item entity.Item
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.UserID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (id, title, description, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.UserID,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create item",
			zap.Error(err),
			zap.String("user_id", item.UserID.String()),
		)
		return fmt.Errorf("create item for %s: %w", item.UserID.String(), err)
	}

	return nil
}

func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find item by ID",
			zap.Error(err),
			zap.String("item_id", id.String()),
		)
		return nil, fmt.Errorf("find item by ID %s: %w", id.String(), err)
	}

	return item, nil
}

func (r *itemRepository) FindAll(ctx context.Context, offset, limit int) ([]*entity.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		r.log.Error("Failed to get all items", zap.Error(err))
		return nil, fmt.Errorf("find all items: %w", err)
	}

	return r.collect(rows)
}

func (r *itemRepository) FindByOwner(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE user_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, userID, offset, limit)
	if err != nil {
		r.log.Error("Failed to get items by owner",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find items for %s: %w", userID.String(), err)
	}

	return r.collect(rows)
}

func (r *itemRepository) collect(rows pgx.Rows) ([]*entity.Item, error) {
	defer rows.Close()

	items := []*entity.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			r.log.Error("Failed to scan item row", zap.Error(err))
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}

	return items, nil
}

func (r *itemRepository) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items
		SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, item.ID, item.Title, item.Description, item.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update item",
			zap.Error(err),
			zap.String("item_id", item.ID.String()),
		)
		return fmt.Errorf("update item %s: %w", item.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %s", apperror.ErrNotFound, item.ID.String())
	}

	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM items WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete item",
			zap.Error(err),
			zap.String("item_id", id.String()),
		)
		return fmt.Errorf("delete item %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %s", apperror.ErrNotFound, id.String())
	}

	return nil
}
