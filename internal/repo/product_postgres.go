package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rogerio-castellano/product-catalog/internal/models"
)

const queryTimeout = 3 * time.Second

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

func (r *PostgresProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	query := `INSERT INTO products (name, price, version) VALUES ($1, $2, 1) RETURNING id, name, price, version`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// price comes back rounded to the column scale.
	var created models.Product
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Price).Scan(&created.ID, &created.Name, &created.Price, &created.Version)
	if err != nil {
		return models.Product{}, err
	}
	return created, nil
}

func (r *PostgresProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	query := `SELECT id, name, price, version FROM products ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Version); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int) (models.Product, error) {
	query := `SELECT id, name, price, version FROM products WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p models.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

// UpdateIfMatching cannot tell a stale version from a deleted row in one
// statement, so zero affected rows is reported as UpdateConflict.
func (r *PostgresProductRepository) UpdateIfMatching(ctx context.Context, p models.Product) (UpdateResult, error) {
	query := `UPDATE products SET name = $1, price = $2, version = version + 1 WHERE id = $3 AND version = $4`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, p.Name, p.Price, p.ID, p.Version)
	if err != nil {
		return UpdateConflict, err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return UpdateConflict, err
	}
	if rowsAffected == 0 {
		return UpdateConflict, nil
	}
	return UpdateOK, nil
}

func (r *PostgresProductRepository) Remove(ctx context.Context, p models.Product) error {
	query := `DELETE FROM products WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, p.ID)
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
