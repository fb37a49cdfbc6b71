package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avalenz-dev/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	productsTable := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  category TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(productsTable).Error)
	return db
}

func newProductsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestListProductsNewestFirst(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	now := time.Now().UTC()
	older := &models.Product{
		ID:        uuid.New(),
		Name:      "Older",
		Price:     decimal.RequireFromString("5.00"),
		Category:  "test",
		CreatedAt: now.Add(-time.Hour),
	}
	newer := &models.Product{
		ID:        uuid.New(),
		Name:      "Newer",
		Price:     decimal.RequireFromString("7.50"),
		Category:  "test",
		CreatedAt: now,
	}
	require.NoError(t, db.Create(older).Error)
	require.NoError(t, db.Create(newer).Error)

	list, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	assert.True(t, list[0].Price.Equal(newer.Price))
}

func TestListProductsEmptyCatalog(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	list, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetProductByID(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	desc := "350ml, dishwasher safe"
	product := &models.Product{
		ID:            uuid.New(),
		Name:          "Ceramic Mug",
		Description:   &desc,
		Price:         decimal.RequireFromString("10.50"),
		StockQuantity: 400,
		Category:      "home",
	}
	require.NoError(t, db.Create(product).Error)

	dto, err := svc.GetProduct(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, dto.Name)
	require.NotNil(t, dto.Description)
	assert.Equal(t, desc, *dto.Description)
	assert.True(t, dto.Price.Equal(product.Price))
}

func TestGetProductMissingIsNotFound(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
