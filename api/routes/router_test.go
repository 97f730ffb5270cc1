package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/internal/auth"
	"github.com/orderdeskhq/orderdesk-backend/internal/orders"
	"github.com/orderdeskhq/orderdesk-backend/internal/products"
	"github.com/orderdeskhq/orderdesk-backend/internal/stock"
	"github.com/orderdeskhq/orderdesk-backend/internal/users"
	"github.com/orderdeskhq/orderdesk-backend/pkg/config"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/security"
)

type openSessions struct{}

func (openSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (openSessions) Generate(ctx context.Context, accessID string) error { return nil }
func (openSessions) Revoke(ctx context.Context, accessID string) error   { return nil }

type gormTx struct {
	db *gorm.DB
}

func (t gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

type alwaysHealthy struct{}

func (alwaysHealthy) Ping(ctx context.Context) error { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{
		Secret:            "router-test-secret",
		Issuer:            "orderdesk-test",
		ExpirationMinutes: 480,
	}
	return cfg
}

func newTestRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderLine{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	cfg := testConfig()

	ordersSvc, err := orders.NewService(orders.NewRepository(conn), gormTx{db: conn}, stock.NewLedger())
	if err != nil {
		t.Fatalf("build orders service: %v", err)
	}
	usersSvc, err := users.NewService(users.NewRepository(conn))
	if err != nil {
		t.Fatalf("build users service: %v", err)
	}
	productsSvc, err := products.NewService(products.NewRepository(conn))
	if err != nil {
		t.Fatalf("build products service: %v", err)
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		SessionManager: openSessions{},
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		t.Fatalf("build auth service: %v", err)
	}

	router := NewRouter(Deps{
		Config:          cfg,
		Logger:          nil,
		DB:              alwaysHealthy{},
		Redis:           nil,
		SessionVerifier: openSessions{},
		AuthService:     authSvc,
		OrdersService:   ordersSvc,
		UsersService:    usersSvc,
		ProductsService: productsSvc,
	})
	return router, conn
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash, err := security.HashPassword("Secret#1", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Router",
		LastName:     "Tester",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedAdmin(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := seedUser(t, db, email)
	role := "admin"
	if err := db.Model(user).UpdateColumn("system_role", role).Error; err != nil {
		t.Fatalf("grant admin role: %v", err)
	}
	user.SystemRole = &role
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, stockQty int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:    uuid.New(),
		Name:  "widget",
		Stock: stockQty,
		Price: decimal.RequireFromString("4.50"),
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func login(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"Secret#1"}`, email)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if envelope.Data.AccessToken == "" {
		t.Fatalf("expected access token, body %s", rec.Body.String())
	}
	return envelope.Data.AccessToken
}

func orderBody(productID uuid.UUID, quantity int) string {
	return fmt.Sprintf(`{
		"attributes": {"name": "restock", "description": "weekly", "status": "PENDING", "date": "2025-09-01"},
		"relationships": {"products": [{"id": %q, "quantity": %d}]}
	}`, productID, quantity)
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	live := doJSON(t, router, http.MethodGet, "/health/live", "", "")
	if live.Code != http.StatusOK {
		t.Fatalf("expected live 200, got %d", live.Code)
	}
	if got := live.Header().Get("X-OrderDesk-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}

	ready := doJSON(t, router, http.MethodGet, "/health/ready", "", "")
	if ready.Code != http.StatusOK {
		t.Fatalf("expected ready 200, got %d", ready.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	router, db := newTestRouter(t)
	owner := seedUser(t, db, "owner@example.com")
	product := seedProduct(t, db, 10)
	token := login(t, router, owner.Email)

	created := doJSON(t, router, http.MethodPost, "/api/v1/orders", token, orderBody(product.ID, 4))
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body.String())
	}

	var createdEnvelope struct {
		Data struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"data"`
		Status int `json:"status"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &createdEnvelope); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if createdEnvelope.Status != http.StatusCreated || createdEnvelope.Data.Status != "PENDING" {
		t.Fatalf("unexpected envelope %+v", createdEnvelope)
	}
	orderID := createdEnvelope.Data.ID

	var stored models.Product
	if err := db.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.Stock != 6 {
		t.Fatalf("expected stock 6 after create, got %d", stored.Stock)
	}

	fetched := doJSON(t, router, http.MethodGet, "/api/v1/orders/"+orderID.String()+"?include=products", token, "")
	if fetched.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", fetched.Code, fetched.Body.String())
	}

	updated := doJSON(t, router, http.MethodPut, "/api/v1/orders/"+orderID.String(), token, orderBody(product.ID, 2))
	if updated.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", updated.Code, updated.Body.String())
	}
	if err := db.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if stored.Stock != 8 {
		t.Fatalf("expected stock 8 after shrinking to 2, got %d", stored.Stock)
	}

	listed := doJSON(t, router, http.MethodGet, "/api/v1/orders?status=PENDING", token, "")
	if listed.Code != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d", listed.Code)
	}

	deleted := doJSON(t, router, http.MethodDelete, "/api/v1/orders/"+orderID.String(), token, "")
	if deleted.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d: %s", deleted.Code, deleted.Body.String())
	}
	if err := db.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if stored.Stock != 10 {
		t.Fatalf("expected stock restored to 10, got %d", stored.Stock)
	}
}

func TestOrderInsufficientStockReturns422(t *testing.T) {
	router, db := newTestRouter(t)
	owner := seedUser(t, db, "owner@example.com")
	product := seedProduct(t, db, 2)
	token := login(t, router, owner.Email)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", token, orderBody(product.ID, 5))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var stored models.Product
	if err := db.First(&stored, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.Stock != 2 {
		t.Fatalf("expected stock unchanged at 2, got %d", stored.Stock)
	}
}

func TestForeignOrderAccessReturns403(t *testing.T) {
	router, db := newTestRouter(t)
	owner := seedUser(t, db, "owner@example.com")
	stranger := seedUser(t, db, "stranger@example.com")
	product := seedProduct(t, db, 10)

	ownerToken := login(t, router, owner.Email)
	created := doJSON(t, router, http.MethodPost, "/api/v1/orders", ownerToken, orderBody(product.ID, 1))
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.Code)
	}
	var envelope struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	strangerToken := login(t, router, stranger.Email)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders/"+envelope.Data.ID.String(), strangerToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/orders/"+envelope.Data.ID.String(), strangerToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on delete, got %d", rec.Code)
	}
}

func TestUsersAndProductsEndpoints(t *testing.T) {
	router, db := newTestRouter(t)
	owner := seedUser(t, db, "owner@example.com")
	admin := seedAdmin(t, db, "admin@example.com")
	seedProduct(t, db, 3)
	token := login(t, router, owner.Email)

	usersList := doJSON(t, router, http.MethodGet, "/api/v1/users", token, "")
	if usersList.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on users list for regular user, got %d", usersList.Code)
	}

	adminToken := login(t, router, admin.Email)
	usersList = doJSON(t, router, http.MethodGet, "/api/v1/users", adminToken, "")
	if usersList.Code != http.StatusOK {
		t.Fatalf("expected 200 on users list for admin, got %d", usersList.Code)
	}

	userGet := doJSON(t, router, http.MethodGet, "/api/v1/users/"+owner.ID.String()+"?include=orders", token, "")
	if userGet.Code != http.StatusOK {
		t.Fatalf("expected 200 on user get, got %d", userGet.Code)
	}

	productsList := doJSON(t, router, http.MethodGet, "/api/v1/products", token, "")
	if productsList.Code != http.StatusOK {
		t.Fatalf("expected 200 on products list, got %d", productsList.Code)
	}

	missing := doJSON(t, router, http.MethodGet, "/api/v1/users/"+uuid.NewString(), token, "")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", missing.Code)
	}
}

func TestLogoutRevokesNothingWithOpenSessions(t *testing.T) {
	router, db := newTestRouter(t)
	owner := seedUser(t, db, "owner@example.com")
	token := login(t, router, owner.Email)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d: %s", rec.Code, rec.Body.String())
	}
}
