package repository

import (
	"context"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ColumnRepository struct {
	db *pgxpool.Pool
}

func NewColumnRepository(db *pgxpool.Pool) *ColumnRepository {
	return &ColumnRepository{db: db}
}

// List returns all columns ordered by "order" (unset last), then id.
func (r *ColumnRepository) List(ctx context.Context) ([]domain.Column, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, color, "order" FROM columns ORDER BY "order" NULLS LAST, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Column{}
	for rows.Next() {
		var c domain.Column
		if err := rows.Scan(&c.ID, &c.Title, &c.Color, &c.Order); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// Create inserts c. An existing id yields ErrDuplicate.
func (r *ColumnRepository) Create(ctx context.Context, c *domain.Column) error {
	_, err := r.db.Exec(ctx, `INSERT INTO columns (id, title, color, "order") VALUES ($1, $2, $3, $4)`,
		c.ID, c.Title, c.Color, c.Order)
	return mapErr(err)
}
