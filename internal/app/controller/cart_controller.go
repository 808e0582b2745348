package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/cart-backend/internal/app/service"
	apperrors "github.com/ikkim/cart-backend/internal/errors"
	"github.com/ikkim/cart-backend/internal/middleware"
	"github.com/ikkim/cart-backend/internal/sheet"
	"github.com/ikkim/cart-backend/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	if err := RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", err)
	}
	return &CartController{
		cartService: cartService,
	}
}

// Pointers distinguish a missing number from zero; zero is left to the
// service so it reports the cart-specific code.
type AddItemRequest struct {
	Name  string   `json:"name" binding:"required,notblank"`
	Price *float64 `json:"price" binding:"required"`
}

type UpdateQuantityRequest struct {
	Quantity *float64 `json:"quantity" binding:"required"`
}

// GetCart returns the cart lines and summary
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	view, err := ctrl.cartService.GetCart(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch cart", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "fetch cart")
		return
	}

	c.JSON(http.StatusOK, view)
}

// AddItem adds a line with quantity 1
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add item request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindError(c, err)
		return
	}

	item, err := ctrl.cartService.AddItem(c.Request.Context(), req.Name, *req.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidItemName):
			apperrors.BadRequest(c, apperrors.CartInvalidName, "Item name must not be empty")
		case errors.Is(err, service.ErrInvalidItemPrice):
			apperrors.BadRequest(c, apperrors.CartInvalidPrice, "Price must be a number greater than zero")
		default:
			log.Error("Failed to add item", err, map[string]interface{}{
				"name": req.Name,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "add item")
		}
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"cart_item_id": item.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item added to cart",
		"item":    item,
	})
}

// UpdateQuantity sets a line's quantity
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseItemID(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update quantity request", map[string]interface{}{
			"cart_item_id": id,
			"error":        err.Error(),
		})
		respondBindError(c, err)
		return
	}

	item, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "Quantity must be a positive whole number")
		case errors.Is(err, service.ErrCartItemNotFound):
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
		default:
			log.Error("Failed to update quantity", err, map[string]interface{}{
				"cart_item_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update quantity")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated",
		"item":    item,
	})
}

// RemoveItem deletes one line
// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseItemID(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.RemoveItem(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
			return
		}
		log.Error("Failed to remove item", err, map[string]interface{}{
			"cart_item_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "remove item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item removed",
	})
}

// ClearCart empties the cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.cartService.ClearCart(c.Request.Context()); err != nil {
		log.Error("Failed to clear cart", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}

// ExportCart downloads the cart as a workbook
// GET /api/v1/cart/export
func (ctrl *CartController) ExportCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	view, err := ctrl.cartService.GetCart(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch cart for export", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "export cart")
		return
	}

	var buf bytes.Buffer
	if err := sheet.WriteCart(&buf, view); err != nil {
		log.Error("Failed to render cart workbook", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "export cart")
		return
	}

	filename := fmt.Sprintf("cart-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func parseItemID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid cart item ID format", map[string]interface{}{
			"cart_item_id": idStr,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid cart item ID")
		return 0, false
	}
	return uint(id), true
}
