package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/auth"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID    map[string]*product.Product
	listErr error
}

func (m *mockProductRepo) List(_ context.Context, params product.ListParams) ([]product.Product, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var out []product.Product
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	m.byID[p.ID] = p
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, id string, upd product.Update) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	return p, nil
}

func (m *mockProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockProductRepo) AdjustStock(_ context.Context, id string, delta int) error {
	p, ok := m.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return product.ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

func (m *mockProductRepo) ListLowStock(_ context.Context, threshold int) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.byID {
		if p.Stock <= threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Count(_ context.Context) (int, error) { return len(m.byID), nil }

type mockCartRepo struct {
	carts map[string]*cart.Cart
}

func (m *mockCartRepo) get(userID string) *cart.Cart {
	if c, ok := m.carts[userID]; ok {
		return c
	}
	c := &cart.Cart{UserID: userID}
	m.carts[userID] = c
	return c
}

func (m *mockCartRepo) Get(_ context.Context, userID string) (*cart.Cart, error) {
	return m.get(userID), nil
}

func (m *mockCartRepo) AddItem(_ context.Context, userID, productID string, quantity int) (*cart.Cart, error) {
	c := m.get(userID)
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			return c, nil
		}
	}
	c.Items = append(c.Items, cart.Item{ProductID: productID, Quantity: quantity})
	return c, nil
}

func (m *mockCartRepo) UpdateItem(_ context.Context, userID, productID string, quantity int) (*cart.Cart, error) {
	c := m.get(userID)
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return c, nil
		}
	}
	return nil, cart.ErrItemNotFound
}

func (m *mockCartRepo) RemoveItem(_ context.Context, userID, productID string) (*cart.Cart, error) {
	c := m.get(userID)
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	return c, nil
}

func (m *mockCartRepo) Clear(_ context.Context, userID string) error {
	delete(m.carts, userID)
	return nil
}

type mockOrderRepo struct {
	byID map[string]*order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) SetStatus(_ context.Context, id string, status order.Status, payment order.PaymentStatus) error {
	o, ok := m.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	o.PaymentStatus = payment
	return nil
}

func (m *mockOrderRepo) Count(_ context.Context) (int, error) { return len(m.byID), nil }

func (m *mockOrderRepo) PaidRevenue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, o := range m.byID {
		if o.PaymentStatus == order.PaymentPaid {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

type mockUserRepo struct {
	byID map[string]*user.User
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	m.byID[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) Update(_ context.Context, id string, upd user.Update) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	return u, nil
}

func (m *mockUserRepo) List(_ context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) Count(_ context.Context) (int, error) { return len(m.byID), nil }

type mockNotifier struct {
	sent []string
}

func (m *mockNotifier) SendInvoice(_ context.Context, to string, _ *order.Order, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

// --- Helpers ---

type env struct {
	products *mockProductRepo
	carts    *mockCartRepo
	orders   *mockOrderRepo
	users    *mockUserRepo
	notifier *mockNotifier
	tokens   *auth.Tokens
	router   http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		products: &mockProductRepo{byID: make(map[string]*product.Product)},
		carts:    &mockCartRepo{carts: make(map[string]*cart.Cart)},
		orders:   &mockOrderRepo{byID: make(map[string]*order.Order)},
		users:    &mockUserRepo{byID: make(map[string]*user.User)},
		notifier: &mockNotifier{},
		tokens:   auth.NewTokens([]byte("test-secret"), time.Hour),
	}
	svc := order.NewService(e.products, e.carts, e.orders, e.users, e.notifier)
	h := New(Config{LowStockThreshold: 5}, e.users, e.products, e.carts, svc, e.orders, e.tokens)
	e.router = h.Routes()
	return e
}

func (e *env) addUser(t *testing.T, id, email string, role user.Role) string {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	e.users.byID[id] = &user.User{
		ID: id, Name: "Test User", Email: email,
		PasswordHash: hash, Role: role, Active: true,
	}
	token, err := e.tokens.Issue(e.users.byID[id])
	require.NoError(t, err)
	return token
}

func (e *env) addProduct(id, name, price string, stock int) {
	e.products.byID[id] = &product.Product{
		ID: id, Name: name, Price: decimal.RequireFromString(price),
		Stock: stock, Category: "test",
	}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// --- Tests ---

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Ada", "email": "ada@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])

	// Password hash must not leak in the response.
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ada@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "u1", "ada@example.com", user.RoleUser)

	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Ada", "email": "ada@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv(t)
	e.addUser(t, "u1", "ada@example.com", user.RoleUser)

	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ada@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid credentials", decodeBody(t, rec)["message"])

	// Unknown email gets the same response as a bad password.
	rec = e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "nobody@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid credentials", decodeBody(t, rec)["message"])
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/cart", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_RejectRegularUser(t *testing.T) {
	e := newEnv(t)
	token := e.addUser(t, "u1", "ada@example.com", user.RoleUser)

	rec := e.do(t, http.MethodGet, "/admin/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPost, "/products", token, map[string]any{"name": "X"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/products/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartFlow(t *testing.T) {
	e := newEnv(t)
	token := e.addUser(t, "u1", "ada@example.com", user.RoleUser)
	e.addProduct("p1", "Widget", "10.00", 5)

	// Missing quantity defaults to 1.
	rec := e.do(t, http.MethodPost, "/cart/add", token, map[string]any{"product_id": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Adding the same product merges quantities instead of duplicating lines.
	rec = e.do(t, http.MethodPost, "/cart/add", token, map[string]any{"product_id": "p1", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(3), body["total_items"])

	rec = e.do(t, http.MethodPut, "/cart/update", token, map[string]any{"product_id": "p1", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/cart/item/p1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["items"])
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	e := newEnv(t)
	token := e.addUser(t, "u1", "ada@example.com", user.RoleUser)

	rec := e.do(t, http.MethodPost, "/cart/add", token, map[string]any{"product_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrder_EndToEnd(t *testing.T) {
	e := newEnv(t)
	token := e.addUser(t, "u1", "ada@example.com", user.RoleUser)
	e.addProduct("p1", "Widget", "50.00", 10)

	rec := e.do(t, http.MethodPost, "/cart/add", token, map[string]any{"product_id": "p1", "quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/orders", token, map[string]any{"address": "12 Main St"})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "order placed successfully", body["message"])

	o := body["order"].(map[string]any)
	assert.Equal(t, "pending", o["status"])
	assert.Equal(t, "not paid", o["payment_status"])
	assert.Equal(t, "150.00", o["total_amount"])

	// Stock was decremented and the cart is now empty.
	assert.Equal(t, 7, e.products.byID["p1"].Stock)
	rec = e.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["items"])

	assert.Equal(t, []string{"ada@example.com"}, e.notifier.sent)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	e := newEnv(t)
	token := e.addUser(t, "u1", "ada@example.com", user.RoleUser)

	rec := e.do(t, http.MethodPost, "/orders", token, map[string]any{"address": "12 Main St"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "your cart is empty", decodeBody(t, rec)["message"])
}

func TestPlaceOrder_MissingAddress(t *testing.T) {
	e := newEnv(t)
	token := e.addUser(t, "u1", "ada@example.com", user.RoleUser)
	e.addProduct("p1", "Widget", "10.00", 5)
	e.do(t, http.MethodPost, "/cart/add", token, map[string]any{"product_id": "p1"})

	rec := e.do(t, http.MethodPost, "/orders", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	e := newEnv(t)
	token := e.addUser(t, "u1", "ada@example.com", user.RoleUser)
	e.addProduct("p1", "Widget", "10.00", 2)
	e.do(t, http.MethodPost, "/cart/add", token, map[string]any{"product_id": "p1", "quantity": 5})

	rec := e.do(t, http.MethodPost, "/orders", token, map[string]any{"address": "12 Main St"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Nothing was mutated by the failed checkout.
	assert.Equal(t, 2, e.products.byID["p1"].Stock)
	assert.Empty(t, e.orders.byID)
}

func TestPlaceOrder_ProductRemovedFromCatalog(t *testing.T) {
	e := newEnv(t)
	token := e.addUser(t, "u1", "ada@example.com", user.RoleUser)
	e.addProduct("p1", "Widget", "10.00", 5)
	e.do(t, http.MethodPost, "/cart/add", token, map[string]any{"product_id": "p1"})

	// The product is deleted between adding to cart and checking out.
	delete(e.products.byID, "p1")

	rec := e.do(t, http.MethodPost, "/orders", token, map[string]any{"address": "12 Main St"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, e.orders.byID)
}

func TestGetOrder_Ownership(t *testing.T) {
	e := newEnv(t)
	ownerToken := e.addUser(t, "u1", "ada@example.com", user.RoleUser)
	otherToken := e.addUser(t, "u2", "bob@example.com", user.RoleUser)
	adminToken := e.addUser(t, "u3", "admin@example.com", user.RoleAdmin)

	e.orders.byID["o1"] = &order.Order{ID: "o1", UserID: "u1", Status: order.StatusPending}

	rec := e.do(t, http.MethodGet, "/orders/o1", ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/orders/o1", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/orders/o1", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/orders/missing", ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelOrder(t *testing.T) {
	e := newEnv(t)
	token := e.addUser(t, "u1", "ada@example.com", user.RoleUser)
	e.orders.byID["o1"] = &order.Order{ID: "o1", UserID: "u1", Status: order.StatusPending}

	rec := e.do(t, http.MethodPut, "/orders/o1/cancel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.StatusCancelled, e.orders.byID["o1"].Status)

	// Cancelled is terminal, a second cancel is rejected.
	rec = e.do(t, http.MethodPut, "/orders/o1/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	e := newEnv(t)
	adminToken := e.addUser(t, "u3", "admin@example.com", user.RoleAdmin)
	e.orders.byID["o1"] = &order.Order{
		ID: "o1", UserID: "u1",
		Status: order.StatusPending, PaymentStatus: order.PaymentNotPaid,
	}

	rec := e.do(t, http.MethodPut, "/admin/orders/o1", adminToken, map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.StatusShipped, e.orders.byID["o1"].Status)

	// Backward move is rejected with the order untouched.
	rec = e.do(t, http.MethodPut, "/admin/orders/o1", adminToken, map[string]any{"status": "pending"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, order.StatusShipped, e.orders.byID["o1"].Status)

	// Unknown status value is a validation error.
	rec = e.do(t, http.MethodPut, "/admin/orders/o1", adminToken, map[string]any{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty update is rejected.
	rec = e.do(t, http.MethodPut, "/admin/orders/o1", adminToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPut, "/admin/orders/o1", adminToken, map[string]any{"payment_status": "paid"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.PaymentPaid, e.orders.byID["o1"].PaymentStatus)
}

func TestAdminSummary(t *testing.T) {
	e := newEnv(t)
	adminToken := e.addUser(t, "u3", "admin@example.com", user.RoleAdmin)
	e.addProduct("p1", "Widget", "10.00", 5)
	e.orders.byID["o1"] = &order.Order{
		ID: "o1", UserID: "u1",
		Status:        order.StatusDelivered,
		PaymentStatus: order.PaymentPaid,
		TotalAmount:   decimal.RequireFromString("99.50"),
	}
	e.orders.byID["o2"] = &order.Order{
		ID: "o2", UserID: "u1",
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentNotPaid,
		TotalAmount:   decimal.RequireFromString("10.00"),
	}

	rec := e.do(t, http.MethodGet, "/admin/summary", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total_users"])
	assert.Equal(t, float64(1), body["total_products"])
	assert.Equal(t, float64(2), body["total_orders"])
	// Only paid orders count toward revenue.
	assert.Equal(t, "99.50", body["total_revenue"])
}

func TestLowStock(t *testing.T) {
	e := newEnv(t)
	adminToken := e.addUser(t, "u3", "admin@example.com", user.RoleAdmin)
	e.addProduct("p1", "Widget", "10.00", 2)
	e.addProduct("p2", "Gadget", "20.00", 50)

	rec := e.do(t, http.MethodGet, "/admin/low-stock", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	low := decodeBody(t, rec)["low_stock"].([]any)
	require.Len(t, low, 1)
	assert.Equal(t, "p1", low[0].(map[string]any)["id"])
}

func TestCreateProduct_Validation(t *testing.T) {
	e := newEnv(t)
	adminToken := e.addUser(t, "u3", "admin@example.com", user.RoleAdmin)

	rec := e.do(t, http.MethodPost, "/products", adminToken, map[string]any{"price": "10.00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/products", adminToken, map[string]any{
		"name": "Widget", "price": "-1.00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/products", adminToken, map[string]any{
		"name": "Widget", "price": "10.00", "stock": 5, "category": "test",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, e.products.byID, 1)
}
