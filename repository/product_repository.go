package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-shop-api/logger"
	"go-shop-api/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// createProductAttempts bounds retries when two inserts compute the same
// next id.
const createProductAttempts = 3

// IProductRepository defines the contract for catalog persistence.
type IProductRepository interface {
	// Create inserts product with the next free id and fills in ID,
	// Available and CreatedAt.
	Create(ctx context.Context, product *model.Product) error
	// Delete removes a product and returns it, or sql.ErrNoRows.
	Delete(ctx context.Context, id int) (*model.Product, error)
	// List returns available products matching q, newest first.
	List(ctx context.Context, q model.ProductQuery) ([]*model.Product, error)
}

type ProductRepository struct {
	DB *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

const productColumns = `id, name, image, category, new_price, old_price, available, created_at`

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	log := logger.Log.WithFields(logrus.Fields{
		"name":     product.Name,
		"category": product.Category,
	})
	log.Info("Executing query to create a new product")

	query := `INSERT INTO products (id, name, image, category, new_price, old_price)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5 FROM products
		RETURNING id, available, created_at`

	var err error
	for attempt := 1; attempt <= createProductAttempts; attempt++ {
		err = r.DB.QueryRowContext(ctx, query,
			product.Name, product.Image, string(product.Category), product.NewPrice, product.OldPrice,
		).Scan(&product.ID, &product.Available, &product.CreatedAt)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			log.WithField("attempt", attempt).Warn("Product id taken by a concurrent insert, retrying")
			continue
		}
		break
	}
	if err != nil {
		log.WithError(err).Error("Failed to execute create product query")
		return err
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int) (*model.Product, error) {
	log := logger.Log.WithField("product_id", id)
	log.Info("Executing query to delete a product")

	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns
	p, err := scanProduct(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.WithError(err).Error("Failed to execute delete product query")
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, q model.ProductQuery) ([]*model.Product, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"category": q.Category,
		"limit":    q.Limit,
		"offset":   q.Offset,
	})
	log.Info("Executing query to list products")

	query := `SELECT ` + productColumns + ` FROM products WHERE available = TRUE`
	var args []interface{}
	if q.Category != "" {
		args = append(args, string(q.Category))
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute list products query")
		return nil, err
	}
	defer rows.Close()

	products := make([]*model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan product row")
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		log.WithError(err).Error("Error during rows iteration")
		return nil, err
	}
	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Image, &p.Category, &p.NewPrice, &p.OldPrice, &p.Available, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
