package service

import (
	"context"
	"errors"
	"sync"

	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/ikkim/cart-backend/internal/app/repository"
	"github.com/ikkim/cart-backend/pkg/logger"
	"github.com/ikkim/cart-backend/pkg/metrics"
	"github.com/ikkim/cart-backend/pkg/pricing"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidItemName  = errors.New("item name must not be empty")
	ErrInvalidItemPrice = errors.New("item price must be a number greater than zero")
	ErrInvalidQuantity  = errors.New("quantity must be a positive whole number")
)

// Largest quantity that still converts to an int without loss.
const maxQuantity = 1 << 53

// EventCartUpdated is the type of the message pushed after every mutation.
const EventCartUpdated = "cart.updated"

// Operation labels for mutation metrics.
const (
	opAdd    = "add"
	opUpdate = "update"
	opRemove = "remove"
	opClear  = "clear"
)

// Summary is the priced totals block of the cart.
type Summary struct {
	Subtotal  float64          `json:"subtotal"`
	Discount  float64          `json:"discount"`
	Tax       float64          `json:"tax"`
	Total     float64          `json:"total"`
	Formatted FormattedSummary `json:"formatted"`
}

// FormattedSummary holds the display strings. Discount is shown negated.
type FormattedSummary struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// CartLine is a stored item plus its derived display values.
type CartLine struct {
	model.CartItem
	ItemTotal          float64 `json:"item_total"`
	FormattedPrice     string  `json:"formatted_price"`
	FormattedItemTotal string  `json:"formatted_item_total"`
}

// CartView is everything the widget renders. Summary is nil for an empty
// cart.
type CartView struct {
	Items   []CartLine `json:"items"`
	Count   int        `json:"count"`
	Summary *Summary   `json:"summary,omitempty"`
}

// CartEvent is broadcast to live subscribers.
type CartEvent struct {
	Type string    `json:"type"`
	Cart *CartView `json:"cart"`
}

// Broadcaster delivers a message to every live subscriber.
type Broadcaster interface {
	Broadcast(message interface{}) error
}

// SummaryCache memoises breakdowns for a given ordered item sequence.
type SummaryCache interface {
	Lookup(ctx context.Context, items []pricing.Item) (pricing.Breakdown, bool, error)
	Store(ctx context.Context, items []pricing.Item, breakdown pricing.Breakdown) error
}

type CartService interface {
	GetCart(ctx context.Context) (*CartView, error)
	AddItem(ctx context.Context, name string, price float64) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID uint, quantity float64) (*model.CartItem, error)
	RemoveItem(ctx context.Context, cartItemID uint) error
	ClearCart(ctx context.Context) error
	Snapshot(ctx context.Context, fn func(view *CartView) error) error
}

// Option configures optional collaborators of the cart service.
type Option func(*cartService)

// WithBroadcaster pushes the recomputed cart after each mutation.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *cartService) {
		s.broadcaster = b
	}
}

// WithSummaryCache serves summaries from cache when possible.
func WithSummaryCache(c SummaryCache) Option {
	return func(s *cartService) {
		s.cache = c
	}
}

// WithMetrics records mutation outcomes and cache use.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(s *cartService) {
		s.metrics = m
	}
}

type cartService struct {
	cartRepo    repository.CartRepository
	broadcaster Broadcaster
	cache       SummaryCache
	metrics     *metrics.CartMetrics

	// mu serialises mutations so each one is followed by its own
	// recompute and broadcast before the next starts.
	mu sync.Mutex
}

func NewCartService(cartRepo repository.CartRepository, opts ...Option) CartService {
	s := &cartService{cartRepo: cartRepo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *cartService) GetCart(ctx context.Context) (*CartView, error) {
	cartItems, err := s.cartRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch cart", err)
		return nil, err
	}

	view := &CartView{
		Items: make([]CartLine, 0, len(cartItems)),
		Count: len(cartItems),
	}
	for _, item := range cartItems {
		itemTotal := pricing.ItemTotal(item.ToPricing())
		view.Items = append(view.Items, CartLine{
			CartItem:           item,
			ItemTotal:          itemTotal,
			FormattedPrice:     pricing.FormatCurrency(item.Price),
			FormattedItemTotal: pricing.FormatCurrency(itemTotal),
		})
	}

	if len(cartItems) > 0 {
		breakdown := s.summarize(ctx, model.PricingItems(cartItems))
		view.Summary = newSummary(breakdown)
	}

	logger.Debug("Cart fetched successfully", map[string]interface{}{
		"count": view.Count,
	})
	return view, nil
}

func (s *cartService) AddItem(ctx context.Context, name string, price float64) (*model.CartItem, error) {
	trimmed, ok := pricing.NormalizeName(name)
	if !ok {
		logger.Warn("Cannot add to cart: empty name", map[string]interface{}{
			"price": price,
		})
		s.metrics.IncMutation(opAdd, metrics.ResultRejected)
		return nil, ErrInvalidItemName
	}
	if !pricing.IsValidPrice(price) {
		logger.Warn("Cannot add to cart: invalid price", map[string]interface{}{
			"name":  trimmed,
			"price": price,
		})
		s.metrics.IncMutation(opAdd, metrics.ResultRejected)
		return nil, ErrInvalidItemPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cartItem := &model.CartItem{
		Name:     trimmed,
		Price:    price,
		Quantity: 1,
	}

	existing, err := s.cartRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch cart", err)
		s.metrics.IncMutation(opAdd, metrics.ResultError)
		return nil, err
	}
	if !pricing.IsPriceable(append(model.PricingItems(existing), cartItem.ToPricing())) {
		logger.Warn("Cannot add to cart: totals would overflow", map[string]interface{}{
			"name":  trimmed,
			"price": price,
		})
		s.metrics.IncMutation(opAdd, metrics.ResultRejected)
		return nil, ErrInvalidItemPrice
	}

	if err := s.cartRepo.Create(ctx, cartItem); err != nil {
		logger.Error("Failed to create cart item", err, map[string]interface{}{
			"name": trimmed,
		})
		s.metrics.IncMutation(opAdd, metrics.ResultError)
		return nil, err
	}

	logger.Info("Cart item added successfully", map[string]interface{}{
		"cart_item_id": cartItem.ID,
		"name":         cartItem.Name,
		"price":        cartItem.Price,
	})

	s.metrics.IncMutation(opAdd, metrics.ResultOK)
	s.publish(ctx)
	return cartItem, nil
}

// UpdateQuantity sets a new quantity. A rejected value leaves the stored
// quantity untouched; nothing is clamped.
func (s *cartService) UpdateQuantity(ctx context.Context, cartItemID uint, quantity float64) (*model.CartItem, error) {
	if !pricing.IsValidQuantity(quantity) || quantity > maxQuantity {
		logger.Warn("Cannot update cart item: invalid quantity", map[string]interface{}{
			"cart_item_id": cartItemID,
			"quantity":     quantity,
		})
		s.metrics.IncMutation(opUpdate, metrics.ResultRejected)
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cartItem, err := s.findItem(ctx, cartItemID)
	if err != nil {
		s.metrics.IncMutation(opUpdate, resultFor(err))
		return nil, err
	}

	qty := int(quantity)

	existing, err := s.cartRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch cart", err)
		s.metrics.IncMutation(opUpdate, metrics.ResultError)
		return nil, err
	}
	items := model.PricingItems(existing)
	for i := range existing {
		if existing[i].ID == cartItemID {
			items[i].Quantity = qty
		}
	}
	if !pricing.IsPriceable(items) {
		logger.Warn("Cannot update cart item: totals would overflow", map[string]interface{}{
			"cart_item_id": cartItemID,
			"quantity":     quantity,
		})
		s.metrics.IncMutation(opUpdate, metrics.ResultRejected)
		return nil, ErrInvalidQuantity
	}

	if err := s.cartRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncMutation(opUpdate, metrics.ResultRejected)
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		s.metrics.IncMutation(opUpdate, metrics.ResultError)
		return nil, err
	}
	cartItem.Quantity = qty

	logger.Info("Cart item updated successfully", map[string]interface{}{
		"cart_item_id": cartItemID,
		"quantity":     qty,
	})

	s.metrics.IncMutation(opUpdate, metrics.ResultOK)
	s.publish(ctx)
	return cartItem, nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartItemID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cartRepo.Delete(ctx, cartItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found for removal", map[string]interface{}{
				"cart_item_id": cartItemID,
			})
			s.metrics.IncMutation(opRemove, metrics.ResultRejected)
			return ErrCartItemNotFound
		}
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		s.metrics.IncMutation(opRemove, metrics.ResultError)
		return err
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"cart_item_id": cartItemID,
	})

	s.metrics.IncMutation(opRemove, metrics.ResultOK)
	s.publish(ctx)
	return nil
}

func (s *cartService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cartRepo.DeleteAll(ctx); err != nil {
		logger.Error("Failed to clear cart", err)
		s.metrics.IncMutation(opClear, metrics.ResultError)
		return err
	}

	logger.Info("Cart cleared")

	s.metrics.IncMutation(opClear, metrics.ResultOK)
	s.publish(ctx)
	return nil
}

// Snapshot hands the current cart to fn while no mutation can run. Anything
// fn queues on the broadcaster is ordered before the next mutation's event.
func (s *cartService) Snapshot(ctx context.Context, fn func(view *CartView) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, err := s.GetCart(ctx)
	if err != nil {
		return err
	}
	return fn(view)
}

func (s *cartService) findItem(ctx context.Context, cartItemID uint) (*model.CartItem, error) {
	cartItem, err := s.cartRepo.FindByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found", map[string]interface{}{
				"cart_item_id": cartItemID,
			})
			return nil, ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return nil, err
	}
	return cartItem, nil
}

// summarize prices the items, consulting the cache first. Cache failures
// fall back to computing directly.
func (s *cartService) summarize(ctx context.Context, items []pricing.Item) pricing.Breakdown {
	if s.cache == nil {
		return pricing.Summarize(items)
	}

	breakdown, hit, err := s.cache.Lookup(ctx, items)
	switch {
	case err != nil:
		logger.Warn("Summary cache lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
		s.metrics.IncCache("error")
	case hit:
		s.metrics.IncCache("hit")
		return breakdown
	default:
		s.metrics.IncCache("miss")
	}

	breakdown = pricing.Summarize(items)
	if err := s.cache.Store(ctx, items, breakdown); err != nil {
		logger.Warn("Summary cache store failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return breakdown
}

// publish recomputes the cart and pushes it to live subscribers. Called
// with mu held.
func (s *cartService) publish(ctx context.Context) {
	if s.broadcaster == nil && s.metrics == nil {
		return
	}

	view, err := s.GetCart(ctx)
	if err != nil {
		logger.Error("Failed to recompute cart for broadcast", err)
		return
	}

	total := 0.0
	if view.Summary != nil {
		total = view.Summary.Total
	}
	s.metrics.SetCart(view.Count, total)

	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Broadcast(CartEvent{Type: EventCartUpdated, Cart: view}); err != nil {
		logger.Error("Failed to broadcast cart update", err)
	}
}

func resultFor(err error) string {
	if errors.Is(err, ErrCartItemNotFound) {
		return metrics.ResultRejected
	}
	return metrics.ResultError
}

func newSummary(b pricing.Breakdown) *Summary {
	return &Summary{
		Subtotal: b.Subtotal,
		Discount: b.Discount,
		Tax:      b.Tax,
		Total:    b.Total,
		Formatted: FormattedSummary{
			Subtotal: pricing.FormatCurrency(b.Subtotal),
			Discount: "-" + pricing.FormatCurrency(b.Discount),
			Tax:      pricing.FormatCurrency(b.Tax),
			Total:    pricing.FormatCurrency(b.Total),
		},
	}
}
