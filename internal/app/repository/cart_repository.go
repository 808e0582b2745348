package repository

import (
	"context"

	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/ikkim/cart-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(ctx context.Context, cartItem *model.CartItem) error
	FindAll(ctx context.Context) ([]model.CartItem, error)
	FindByID(ctx context.Context, id uint) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, cartItem *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"name":     cartItem.Name,
		"price":    cartItem.Price,
		"quantity": cartItem.Quantity,
	})

	if err := r.db.WithContext(ctx).Create(cartItem).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"name":  cartItem.Name,
			"price": cartItem.Price,
		})
		return err
	}

	logger.Debug("Cart item created in database", map[string]interface{}{
		"cart_item_id": cartItem.ID,
	})
	return nil
}

// FindAll returns every line in insertion order.
func (r *cartRepository) FindAll(ctx context.Context) ([]model.CartItem, error) {
	var cartItems []model.CartItem
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&cartItems).Error; err != nil {
		logger.Error("Failed to find cart items in database", err)
		return nil, err
	}

	logger.Debug("Cart items found in database", map[string]interface{}{
		"count": len(cartItems),
	})
	return cartItems, nil
}

func (r *cartRepository) FindByID(ctx context.Context, id uint) (*model.CartItem, error) {
	var cartItem model.CartItem
	if err := r.db.WithContext(ctx).First(&cartItem, id).Error; err != nil {
		logger.Debug("Cart item lookup failed", map[string]interface{}{
			"cart_item_id": id,
			"error":        err.Error(),
		})
		return nil, err
	}
	return &cartItem, nil
}

// UpdateQuantity changes only the quantity column. Name and price are
// fixed once the line exists.
func (r *cartRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	logger.Debug("Updating cart item quantity in database", map[string]interface{}{
		"cart_item_id": id,
		"quantity":     quantity,
	})

	result := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity)
	if result.Error != nil {
		logger.Error("Failed to update cart item quantity in database", result.Error, map[string]interface{}{
			"cart_item_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting cart item from database", map[string]interface{}{
		"cart_item_id": id,
	})

	result := r.db.WithContext(ctx).Delete(&model.CartItem{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete cart item from database", result.Error, map[string]interface{}{
			"cart_item_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) DeleteAll(ctx context.Context) error {
	logger.Debug("Deleting all cart items from database")

	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.CartItem{}).Error
	if err != nil {
		logger.Error("Failed to delete all cart items from database", err)
		return err
	}
	return nil
}
