package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"comanda-service/internal/lifecycle"
	"comanda-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProductByID retrieves a catalog product by ID. Inactive products are
// returned as-is; availability is the caller's decision.
func (s *Store) GetProductByID(ctx context.Context, id int64) (models.ProductSnapshot, error) {
	var product models.ProductSnapshot
	err := s.db.GetContext(ctx, &product,
		"SELECT id, name, unit_price, active FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.ProductSnapshot{}, lifecycle.ErrProductUnavailable
	}
	if err != nil {
		return models.ProductSnapshot{}, err
	}
	return product, nil
}

// GetActiveProducts retrieves the menu: all products currently offered.
func (s *Store) GetActiveProducts(ctx context.Context) ([]models.ProductSnapshot, error) {
	var products []models.ProductSnapshot
	err := s.db.SelectContext(ctx, &products,
		"SELECT id, name, unit_price, active FROM products WHERE active ORDER BY id")
	return products, err
}

// GetProducts retrieves all products, active or not
func (s *Store) GetProducts(ctx context.Context) ([]models.ProductSnapshot, error) {
	var products []models.ProductSnapshot
	err := s.db.SelectContext(ctx, &products,
		"SELECT id, name, unit_price, active FROM products ORDER BY id")
	return products, err
}
