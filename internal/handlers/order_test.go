package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/bloom/internal/config"
	"github.com/example/bloom/internal/middleware"
	"github.com/example/bloom/internal/models"
	"github.com/example/bloom/internal/notify"
	"github.com/example/bloom/internal/orders"
	"github.com/example/bloom/internal/utils"
)

type orderTestEnv struct {
	app       *fiber.App
	db        *gorm.DB
	user      models.User
	address   models.Address
	productID uuid.UUID
	token     string
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Address{}, &models.Order{}, &models.OrderItem{}))

	// products carry postgres array columns, so the table is declared by hand
	require.NoError(t, db.Exec(`CREATE TABLE products (
		id text PRIMARY KEY, created_at datetime, updated_at datetime,
		slug text, name text, price real, currency text,
		inventory_quantity integer, is_active numeric
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE cart_items (
		id text PRIMARY KEY, created_at datetime, updated_at datetime,
		user_id text, product_id text, quantity integer, size text, color text
	)`).Error)

	user := models.User{Email: "shopper@example.com", IsVerified: true}
	require.NoError(t, db.Create(&user).Error)

	address := models.Address{
		UserID:      user.ID,
		FullName:    "A Shopper",
		AddressLine: "12 MG Road",
		City:        "Bengaluru",
		IsDefault:   true,
	}
	require.NoError(t, db.Create(&address).Error)

	productID := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO products (id, slug, name, price, currency, inventory_quantity, is_active)
		 VALUES (?, 'linen-shirt', 'Linen Shirt', 1200, 'INR', 10, ?)`,
		productID.String(), true,
	).Error)

	cfg := &config.Config{JWTSecret: "test-secret", TokenExpires: time.Hour}
	token, err := utils.GenerateToken(cfg.JWTSecret, user.ID, cfg.TokenExpires)
	require.NoError(t, err)

	outbox := notify.NewOutbox(&notify.Router{}, 8, 1)
	handler := NewOrderHandler(db, NewCouponHandler(db), outbox)

	app := fiber.New()
	auth := middleware.AuthMiddleware(cfg)
	app.Post("/orders", auth, handler.CreateOrder)
	app.Post("/orders/:id/cancel", auth, handler.CancelOrder)
	app.Patch("/orders/:id/status", auth, handler.UpdateStatus)

	return &orderTestEnv{
		app:       app,
		db:        db,
		user:      user,
		address:   address,
		productID: productID,
		token:     token,
	}
}

func (e *orderTestEnv) request(t *testing.T, method, path string, payload interface{}) *http.Response {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type createOrderResponse struct {
	Success bool `json:"success"`
	Data    struct {
		OrderNumber string  `json:"order_number"`
		Status      string  `json:"status"`
		Subtotal    float64 `json:"subtotal"`
		ShippingFee float64 `json:"shipping_fee"`
		Tax         float64 `json:"tax"`
		Total       float64 `json:"total"`
	} `json:"data"`
}

func (e *orderTestEnv) placeOrder(t *testing.T) createOrderResponse {
	t.Helper()

	resp := e.request(t, fiber.MethodPost, "/orders", createOrderRequest{
		Items:             []orderItemRequest{{ProductID: e.productID.String(), Quantity: 1}},
		ShippingAddressID: e.address.ID.String(),
		PaymentMethod:     "card",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var parsed createOrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed
}

func TestCreateOrderComputesTotalsAndDecrementsInventory(t *testing.T) {
	env := newOrderTestEnv(t)

	parsed := env.placeOrder(t)
	assert.True(t, parsed.Success)
	assert.Equal(t, orders.StatusProcessing, parsed.Data.Status)
	assert.Equal(t, 1200.0, parsed.Data.Subtotal)
	assert.Equal(t, 0.0, parsed.Data.ShippingFee)
	assert.Equal(t, 216.0, parsed.Data.Tax)
	assert.Equal(t, 1416.0, parsed.Data.Total)

	var remaining int
	require.NoError(t, env.db.Raw(
		`SELECT inventory_quantity FROM products WHERE id = ?`, env.productID.String(),
	).Scan(&remaining).Error)
	assert.Equal(t, 9, remaining)
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	env := newOrderTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/orders", createOrderRequest{
		Items:             []orderItemRequest{{ProductID: env.productID.String(), Quantity: 11}},
		ShippingAddressID: env.address.ID.String(),
		PaymentMethod:     "card",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrderRetriesOnOrderNumberCollision(t *testing.T) {
	env := newOrderTestEnv(t)

	taken := "BLM900000001042"
	require.NoError(t, env.db.Create(&models.Order{
		UserID:      env.user.ID,
		OrderNumber: taken,
		Status:      orders.StatusProcessing,
		PlacedAt:    time.Now(),
	}).Error)

	orig := generateOrderNumber
	calls := 0
	generateOrderNumber = func(now time.Time) string {
		calls++
		if calls == 1 {
			return taken
		}
		return orig(now)
	}
	defer func() { generateOrderNumber = orig }()

	parsed := env.placeOrder(t)
	assert.NotEqual(t, taken, parsed.Data.OrderNumber)
	assert.Equal(t, 2, calls)

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCancelOrderCommitsBeforeResponding(t *testing.T) {
	env := newOrderTestEnv(t)

	order := models.Order{
		UserID:      env.user.ID,
		OrderNumber: "BLM900000002001",
		Status:      orders.StatusProcessing,
		PlacedAt:    time.Now(),
	}
	require.NoError(t, env.db.Create(&order).Error)

	resp := env.request(t, fiber.MethodPost, "/orders/"+order.ID.String()+"/cancel", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Order
	require.NoError(t, env.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, orders.StatusCancelled, stored.Status)
}

func TestCancelOrderRejectedAfterShipping(t *testing.T) {
	env := newOrderTestEnv(t)

	order := models.Order{
		UserID:      env.user.ID,
		OrderNumber: "BLM900000002002",
		Status:      orders.StatusShipped,
		PlacedAt:    time.Now(),
	}
	require.NoError(t, env.db.Create(&order).Error)

	resp := env.request(t, fiber.MethodPost, "/orders/"+order.ID.String()+"/cancel", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var stored models.Order
	require.NoError(t, env.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, orders.StatusShipped, stored.Status)
}

func TestUpdateStatusAdvancesOrder(t *testing.T) {
	env := newOrderTestEnv(t)

	order := models.Order{
		UserID:      env.user.ID,
		OrderNumber: "BLM900000002003",
		Status:      orders.StatusProcessing,
		PlacedAt:    time.Now(),
	}
	require.NoError(t, env.db.Create(&order).Error)

	resp := env.request(t, fiber.MethodPatch, "/orders/"+order.ID.String()+"/status",
		updateStatusRequest{Status: orders.StatusConfirmed})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Order
	require.NoError(t, env.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, orders.StatusConfirmed, stored.Status)
}
