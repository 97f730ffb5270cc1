package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:products_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:    uuid.New(),
		Name:  name,
		Stock: stock,
		Price: decimal.RequireFromString("9.99"),
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := db.Model(product).UpdateColumn("created_at", createdAt).Error; err != nil {
		t.Fatalf("set created_at: %v", err)
	}
	return product
}

func TestListFiltersByNameAndStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	seedProduct(t, db, "Blue Widget", 5, base)
	seedProduct(t, db, "Red Widget", 0, base.Add(time.Minute))
	seedProduct(t, db, "Gadget", 3, base.Add(2*time.Minute))

	byName, err := repo.List(ctx, pagination.Params{}, ListFilters{Name: "widget"})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(byName.Products) != 2 {
		t.Fatalf("expected 2 widgets, got %d", len(byName.Products))
	}

	inStock, err := repo.List(ctx, pagination.Params{}, ListFilters{InStock: true})
	if err != nil {
		t.Fatalf("list in stock: %v", err)
	}
	if len(inStock.Products) != 2 {
		t.Fatalf("expected 2 in-stock products, got %d", len(inStock.Products))
	}
	for _, product := range inStock.Products {
		if product.Stock <= 0 {
			t.Fatalf("expected positive stock, got %+v", product)
		}
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedProduct(t, db, fmt.Sprintf("item-%d", i), 1, base.Add(time.Duration(i)*time.Minute))
	}

	firstPage, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilters{})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(firstPage.Products) != 2 || firstPage.NextCursor == "" {
		t.Fatalf("expected 2 products and a cursor, got %d cursor %q", len(firstPage.Products), firstPage.NextCursor)
	}
	if firstPage.Products[0].Name != "item-2" {
		t.Fatalf("expected newest first, got %q", firstPage.Products[0].Name)
	}

	secondPage, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: firstPage.NextCursor}, ListFilters{})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(secondPage.Products) != 1 || secondPage.NextCursor != "" {
		t.Fatalf("expected final page of 1, got %d cursor %q", len(secondPage.Products), secondPage.NextCursor)
	}
}

func TestServiceGetNotFound(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
