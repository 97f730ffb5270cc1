package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

func seedOrderRow(t *testing.T, db *gorm.DB, userID uuid.UUID, name string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Status: status,
		Date:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(order).Error)
	require.NoError(t, db.Model(order).UpdateColumn("created_at", createdAt).Error)
	order.CreatedAt = createdAt
	return order
}

func TestRepoListKeysetPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	owner := mustCreateUser(t, db)

	base := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedOrderRow(t, db, owner.ID, "order", enums.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: first.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 2)

	third, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: second.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, third.Orders, 1)
	assert.Empty(t, third.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, page := range [][]OrderDTO{first.Orders, second.Orders, third.Orders} {
		for _, order := range page {
			assert.False(t, seen[order.ID], "order %s returned twice", order.ID)
			seen[order.ID] = true
		}
	}
}

func TestRepoListFilterCombinations(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	owner := mustCreateUser(t, db)
	other := mustCreateUser(t, db)

	base := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	seedOrderRow(t, db, owner.ID, "Weekly Restock", enums.OrderStatusPending, base)
	seedOrderRow(t, db, owner.ID, "Clearance", enums.OrderStatusFulfilled, base.Add(time.Minute))
	seedOrderRow(t, db, other.ID, "Weekly Restock", enums.OrderStatusCanceled, base.Add(2*time.Minute))

	status := enums.OrderStatusFulfilled
	byStatus, err := repo.List(ctx, pagination.Params{}, ListFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, byStatus.Orders, 1)
	assert.Equal(t, "FULFILLED", byStatus.Orders[0].Status)

	byName, err := repo.List(ctx, pagination.Params{}, ListFilters{Name: "weekly"})
	require.NoError(t, err)
	assert.Len(t, byName.Orders, 2)

	byUser, err := repo.List(ctx, pagination.Params{}, ListFilters{UserID: &owner.ID})
	require.NoError(t, err)
	assert.Len(t, byUser.Orders, 2)

	combined, err := repo.List(ctx, pagination.Params{}, ListFilters{Name: "weekly", UserID: &other.ID})
	require.NoError(t, err)
	require.Len(t, combined.Orders, 1)
	assert.Equal(t, other.ID, combined.Orders[0].UserID)
}

func TestRepoListCustomSortIgnoresCursor(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	owner := mustCreateUser(t, db)

	base := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	seedOrderRow(t, db, owner.ID, "bravo", enums.OrderStatusPending, base)
	seedOrderRow(t, db, owner.ID, "alpha", enums.OrderStatusPending, base.Add(time.Minute))

	sorted, err := repo.List(ctx, pagination.Params{Limit: 1}, ListFilters{Sort: []SortKey{{Column: "name"}}})
	require.NoError(t, err)
	require.Len(t, sorted.Orders, 1)
	assert.Equal(t, "alpha", sorted.Orders[0].Name)
	assert.Empty(t, sorted.NextCursor)
}

func TestRepoListRejectsMalformedCursor(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	_, err := repo.List(context.Background(), pagination.Params{Cursor: "not-base64!"}, ListFilters{})
	require.Error(t, err)
}

func TestRepoReplaceLinesSwapsFullSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	owner := mustCreateUser(t, db)
	first := mustCreateProduct(t, db, 10, "1.00")
	second := mustCreateProduct(t, db, 10, "2.00")

	order := seedOrderRow(t, db, owner.ID, "swap", enums.OrderStatusPending, time.Now().UTC())
	require.NoError(t, repo.ReplaceLines(ctx, order.ID, []models.OrderLine{{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: first.ID,
		Quantity:  2,
		Price:     decimal.RequireFromString("1.00"),
	}}))

	require.NoError(t, repo.ReplaceLines(ctx, order.ID, []models.OrderLine{{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: second.ID,
		Quantity:  3,
		Price:     decimal.RequireFromString("2.00"),
	}}))

	lines, err := repo.FindLinesByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, second.ID, lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)
}
