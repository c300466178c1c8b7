package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshat03/shopcart/internal/db"
	"github.com/akshat03/shopcart/internal/handlers"
	"github.com/akshat03/shopcart/internal/middleware"
	"github.com/akshat03/shopcart/internal/services"
)

const testSecret = "handlers-test-secret"

type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]bool)}
}

func (d *fakeDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = true
	return nil
}

func (d *fakeDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[jti], nil
}

type fakeImageStore struct{}

func (fakeImageStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "http://images.test/product-images/" + objectName, nil
}

type testEnv struct {
	app      *fiber.App
	users    *db.MemoryUserStore
	products *db.MemoryProductStore
	auth     *services.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := db.NewMemoryUserStore()
	products := db.NewMemoryProductStore()
	denylist := newFakeDenylist()

	authSvc := services.NewAuthService(users, denylist, testSecret)
	catalogSvc := services.NewCatalogService(products, fakeImageStore{})
	cartSvc := services.NewCartService(users, products)

	app := fiber.New()
	api := handlers.API{
		Auth:     &handlers.AuthHandler{Svc: authSvc},
		Products: &handlers.ProductHandler{Svc: catalogSvc},
		Cart:     &handlers.CartHandler{Svc: cartSvc},
		AuthMW:   middleware.Auth([]byte(testSecret), denylist),
		AdminMW:  middleware.RequireAdmin,
	}
	api.Register(app)

	return &testEnv{app: app, users: users, products: products, auth: authSvc}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) signup(t *testing.T, email, password, name string) (token string, user map[string]any) {
	t.Helper()
	resp := e.request(t, http.MethodPost, "/api/signup", "", fiber.Map{
		"email": email, "password": password, "name": name,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body := decodeMap(t, resp)
	return body["token"].(string), body["user"].(map[string]any)
}

func (e *testEnv) loginAdmin(t *testing.T) string {
	t.Helper()
	require.NoError(t, e.auth.EnsureAdmin(context.Background(), "admin@shop.com", "admin-pw"))
	resp := e.request(t, http.MethodPost, "/api/login", "", fiber.Map{
		"email": "admin@shop.com", "password": "admin-pw",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return decodeMap(t, resp)["token"].(string)
}

func (e *testEnv) createProduct(t *testing.T, adminToken, name string, price int64, category string) string {
	t.Helper()
	resp := e.request(t, http.MethodPost, "/api/products", adminToken, fiber.Map{
		"name": name, "price": price, "category": category, "description": name + " description",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decodeMap(t, resp)["id"].(string)
}

func TestSignup(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	token, user := env.signup(t, "a@x.com", "Secret1!", "Jane Doe")
	assert.NotEmpty(t, token)
	assert.Equal(t, "Jane Doe", user["name"])
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "a@x.com", user["email"])

	// same email, different case: conflict, no second account
	resp := env.request(t, http.MethodPost, "/api/signup", "", fiber.Map{
		"email": "A@X.com", "password": "other", "name": "Copy Cat",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, decodeMap(t, resp)["error"], "already registered")

	resp = env.request(t, http.MethodPost, "/api/signup", "", fiber.Map{"email": "b@x.com"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, created := env.signup(t, "a@x.com", "Secret1!", "Jane Doe")

	resp := env.request(t, http.MethodPost, "/api/login", "", fiber.Map{
		"email": "A@X.com", "password": "Secret1!",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, created["id"], body["user"].(map[string]any)["id"])

	resp = env.request(t, http.MethodPost, "/api/login", "", fiber.Map{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token, _ := env.signup(t, "out@x.com", "pw123456", "Log Out")

	resp := env.request(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// the same token no longer authenticates
	resp = env.request(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token, _ := env.signup(t, "me@x.com", "pw123456", "Old Name")

	resp := env.request(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Old Name", decodeMap(t, resp)["name"])

	resp = env.request(t, http.MethodPut, "/api/profile", token, fiber.Map{"name": "  new   name "})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "New Name", decodeMap(t, resp)["name"])

	resp = env.request(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProductAdminGate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	adminToken := env.loginAdmin(t)
	userToken, _ := env.signup(t, "shopper@x.com", "pw123456", "Shopper One")

	productID := env.createProduct(t, adminToken, "Lamp", 1500, "Home")

	// non-admin mutation attempts: 403 and the product is unchanged
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/" + productID},
		{http.MethodDelete, "/api/products/" + productID},
	} {
		resp := env.request(t, tc.method, tc.path, userToken, fiber.Map{"name": "Hacked"})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "%s %s", tc.method, tc.path)
	}

	resp := env.request(t, http.MethodGet, "/api/products/"+productID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lamp", decodeMap(t, resp)["name"])

	// unauthenticated mutation: 401 before the role check
	resp = env.request(t, http.MethodPut, "/api/products/"+productID, "", fiber.Map{"name": "X"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProductUpdate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	adminToken := env.loginAdmin(t)
	productID := env.createProduct(t, adminToken, "Lamp", 1500, "Home")

	resp := env.request(t, http.MethodPut, "/api/products/"+productID, adminToken, fiber.Map{
		"price": 1200, "category": "Lighting",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, float64(1200), body["price"])
	assert.Equal(t, "Lighting", body["category"])
	assert.Equal(t, "Lamp", body["name"]) // untouched field survives

	resp = env.request(t, http.MethodPut, "/api/products/"+productID, adminToken, fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodPut, "/api/products/not-a-hex-id", adminToken, fiber.Map{"price": 1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodPut, "/api/products/64b0c1f2a3d4e5f6a7b8c9d0", adminToken, fiber.Map{"price": 1})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProductDelete(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	adminToken := env.loginAdmin(t)
	productID := env.createProduct(t, adminToken, "Lamp", 1500, "Home")

	resp := env.request(t, http.MethodDelete, "/api/products/"+productID, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodDelete, "/api/products/"+productID, adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/products/"+productID, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProductFilters(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	adminToken := env.loginAdmin(t)

	env.createProduct(t, adminToken, "Socks", 50, "Apparel")
	env.createProduct(t, adminToken, "Running Shoes", 500, "Shoes")
	env.createProduct(t, adminToken, "Jacket", 5000, "Apparel")

	resp := env.request(t, http.MethodGet, "/api/products?minPrice=100&maxPrice=1000", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decodeList(t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Running Shoes", list[0]["name"])

	resp = env.request(t, http.MethodGet, "/api/products?maxPrice=400", "", nil)
	list = decodeList(t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Socks", list[0]["name"])

	resp = env.request(t, http.MethodGet, "/api/products?category=apparel", "", nil)
	assert.Len(t, decodeList(t, resp), 2)

	resp = env.request(t, http.MethodGet, "/api/products?search=RUNNING", "", nil)
	assert.Len(t, decodeList(t, resp), 1)

	resp = env.request(t, http.MethodGet, "/api/products?minPrice=abc", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProductImageUpload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	adminToken := env.loginAdmin(t)
	productID := env.createProduct(t, adminToken, "Lamp", 1500, "Home")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "lamp.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/"+productID+"/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)

	resp, err := env.app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeMap(t, resp)
	assert.Equal(t, fmt.Sprintf("http://images.test/product-images/%s_lamp.png", productID), body["imageUrl"])
}

func TestCartFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	adminToken := env.loginAdmin(t)
	userToken, _ := env.signup(t, "cart@x.com", "pw123456", "Cart User")

	mugID := env.createProduct(t, adminToken, "Mug", 900, "Kitchen")
	bowlID := env.createProduct(t, adminToken, "Bowl", 700, "Kitchen")

	// two adds of the same product merge into one entry
	resp := env.request(t, http.MethodPost, "/api/cart", userToken, fiber.Map{"productId": mugID, "quantity": 2})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeMap(t, resp)["cartCount"])

	resp = env.request(t, http.MethodPost, "/api/cart", userToken, fiber.Map{"productId": mugID, "quantity": 3})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(5), decodeMap(t, resp)["cartCount"])

	resp = env.request(t, http.MethodPost, "/api/cart", userToken, fiber.Map{"productId": bowlID, "quantity": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(6), decodeMap(t, resp)["cartCount"])

	resp = env.request(t, http.MethodGet, "/api/cart", userToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	items := decodeList(t, resp)
	require.Len(t, items, 2)

	// absolute quantity set
	resp = env.request(t, http.MethodPatch, "/api/cart/"+mugID, userToken, fiber.Map{"quantity": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeMap(t, resp)["cartCount"])

	// deleting the product hides the entry from the cart view
	resp = env.request(t, http.MethodDelete, "/api/products/"+bowlID, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/cart", userToken, nil)
	items = decodeList(t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, mugID, items[0]["productId"])
	assert.Equal(t, "Mug", items[0]["product"].(map[string]any)["name"])

	// removal is idempotent
	resp = env.request(t, http.MethodDelete, "/api/cart/"+mugID, userToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = env.request(t, http.MethodDelete, "/api/cart/"+mugID, userToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), decodeMap(t, resp)["cartCount"])

	resp = env.request(t, http.MethodDelete, "/api/cart", userToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), decodeMap(t, resp)["cartCount"])
}

func TestCartErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	userToken, _ := env.signup(t, "cart@x.com", "pw123456", "Cart User")

	resp := env.request(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/cart", userToken, fiber.Map{"productId": "junk", "quantity": 1})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/cart", userToken, fiber.Map{
		"productId": "64b0c1f2a3d4e5f6a7b8c9d0", "quantity": 1,
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.request(t, http.MethodPatch, "/api/cart/64b0c1f2a3d4e5f6a7b8c9d0", userToken, fiber.Map{"quantity": 2})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestFallbackRoute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/api/does-not-exist", "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", decodeMap(t, resp)["error"])
}
