package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/cart-backend/internal/app/repository"
	"github.com/ikkim/cart-backend/internal/app/service"
	"github.com/ikkim/cart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupCartControllerTest(t *testing.T) (*gin.Engine, service.CartService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartService := service.NewCartService(repository.NewCartRepository(testDB))
	cartController := NewCartController(cartService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	cart := router.Group("/cart")
	{
		cart.GET("", cartController.GetCart)
		cart.DELETE("", cartController.ClearCart)
		cart.GET("/export", cartController.ExportCart)
		cart.POST("/items", cartController.AddItem)
		cart.PUT("/items/:id", cartController.UpdateQuantity)
		cart.DELETE("/items/:id", cartController.RemoveItem)
	}

	return router, cartService
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestCartController_GetCart_Empty(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := performRequest(router, http.MethodGet, "/cart", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, float64(0), response["count"])
	assert.Empty(t, response["items"])
	assert.NotContains(t, response, "summary")
}

func TestCartController_GetCart_WithItems(t *testing.T) {
	router, cartService := setupCartControllerTest(t)
	ctx := context.Background()

	item, err := cartService.AddItem(ctx, "Item 1", 25)
	require.NoError(t, err)
	_, err = cartService.UpdateQuantity(ctx, item.ID, 2)
	require.NoError(t, err)
	_, err = cartService.AddItem(ctx, "Item 2", 10)
	require.NoError(t, err)

	w := performRequest(router, http.MethodGet, "/cart", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, float64(2), response["count"])

	items := response["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Item 1", first["name"])
	assert.Equal(t, float64(50), first["item_total"])
	assert.Equal(t, "$25.00", first["formatted_price"])
	assert.Equal(t, "$50.00", first["formatted_item_total"])

	summary := response["summary"].(map[string]interface{})
	assert.Equal(t, 61.56, summary["total"])
	formatted := summary["formatted"].(map[string]interface{})
	assert.Equal(t, "$60.00", formatted["subtotal"])
	assert.Equal(t, "-$3.00", formatted["discount"])
	assert.Equal(t, "$4.56", formatted["tax"])
	assert.Equal(t, "$61.56", formatted["total"])
}

func TestCartController_AddItem_Success(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := performRequest(router, http.MethodPost, "/cart/items", map[string]interface{}{
		"name":  "  Widget ",
		"price": 9.99,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	item := decode(t, w)["item"].(map[string]interface{})
	assert.Equal(t, "Widget", item["name"])
	assert.Equal(t, 9.99, item["price"])
	assert.Equal(t, float64(1), item["quantity"])
}

func TestCartController_AddItem_Invalid(t *testing.T) {
	router, cartService := setupCartControllerTest(t)

	tests := []struct {
		name     string
		body     interface{}
		wantCode string
	}{
		{"Missing name", map[string]interface{}{"price": 5}, "VALIDATION_INVALID_INPUT"},
		{"Blank name", map[string]interface{}{"name": "   ", "price": 5}, "VALIDATION_INVALID_INPUT"},
		{"Missing price", map[string]interface{}{"name": "Widget"}, "VALIDATION_INVALID_INPUT"},
		{"Zero price", map[string]interface{}{"name": "Widget", "price": 0}, "CART_INVALID_PRICE"},
		{"Negative price", map[string]interface{}{"name": "Widget", "price": -1}, "CART_INVALID_PRICE"},
		{"Price as text", map[string]interface{}{"name": "Widget", "price": "abc"}, "VALIDATION_INVALID_FORMAT"},
		{"Malformed JSON", `{"name":`, "VALIDATION_INVALID_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/cart/items", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, decode(t, w)["error"])
		})
	}

	view, err := cartService.GetCart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartController_AddItem_ValidationFields(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := performRequest(router, http.MethodPost, "/cart/items", map[string]interface{}{"name": " "})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "must not be blank", fields["name"])
	assert.Equal(t, "is required", fields["price"])
}

func TestCartController_UpdateQuantity(t *testing.T) {
	router, cartService := setupCartControllerTest(t)
	item, err := cartService.AddItem(context.Background(), "Widget", 10)
	require.NoError(t, err)
	path := "/cart/items/" + strconv.FormatUint(uint64(item.ID), 10)

	w := performRequest(router, http.MethodPut, path, map[string]interface{}{"quantity": 5})
	assert.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)["item"].(map[string]interface{})
	assert.Equal(t, float64(5), updated["quantity"])

	for _, q := range []interface{}{0, -2, 2.5} {
		w = performRequest(router, http.MethodPut, path, map[string]interface{}{"quantity": q})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "CART_INVALID_QUANTITY", decode(t, w)["error"])
	}

	w = performRequest(router, http.MethodPut, path, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	view, err := cartService.GetCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestCartController_UpdateQuantity_NotFound(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := performRequest(router, http.MethodPut, "/cart/items/9999", map[string]interface{}{"quantity": 2})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CART_ITEM_NOT_FOUND", decode(t, w)["error"])
}

func TestCartController_InvalidID(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	for _, path := range []string{"/cart/items/abc", "/cart/items/0", "/cart/items/-1"} {
		w := performRequest(router, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "VALIDATION_INVALID_ID", decode(t, w)["error"])
	}
}

func TestCartController_RemoveItem(t *testing.T) {
	router, cartService := setupCartControllerTest(t)
	item, err := cartService.AddItem(context.Background(), "Widget", 10)
	require.NoError(t, err)
	path := "/cart/items/" + strconv.FormatUint(uint64(item.ID), 10)

	w := performRequest(router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CART_ITEM_NOT_FOUND", decode(t, w)["error"])
}

func TestCartController_ClearCart(t *testing.T) {
	router, cartService := setupCartControllerTest(t)
	ctx := context.Background()
	_, _ = cartService.AddItem(ctx, "Item 1", 10)
	_, _ = cartService.AddItem(ctx, "Item 2", 20)

	w := performRequest(router, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	view, err := cartService.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartController_ExportCart(t *testing.T) {
	router, cartService := setupCartControllerTest(t)
	_, err := cartService.AddItem(context.Background(), "Widget", 30)
	require.NoError(t, err)

	w := performRequest(router, http.MethodGet, "/cart/export", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Cart")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Widget", rows[1][0])
}

func TestCartController_OverflowingTotalsRejected(t *testing.T) {
	router, _ := setupCartControllerTest(t)

	w := performRequest(router, http.MethodPost, "/cart/items", `{"name":"Huge","price":1e308}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["item"].(map[string]interface{})["id"].(float64)
	path := "/cart/items/" + strconv.FormatFloat(id, 'f', 0, 64)

	w = performRequest(router, http.MethodPut, path, map[string]interface{}{"quantity": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CART_INVALID_QUANTITY", decode(t, w)["error"])

	w = performRequest(router, http.MethodPost, "/cart/items", `{"name":"Huge again","price":1e308}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CART_INVALID_PRICE", decode(t, w)["error"])

	w = performRequest(router, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Body.Bytes())
	response := decode(t, w)
	assert.Equal(t, float64(1), response["count"])
	item := response["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(1), item["quantity"])
	assert.Contains(t, response, "summary")
}
