// Package engine composes the shopper's cart, wishlist, history and session
// behind one explicitly constructed value. Every operation runs to completion
// under one lock, writes the changed store through the persistence gateway and
// then notifies subscribers with an immutable copy of the new state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/internal/app/service"
	"github.com/ikkim/shopgenie-backend/internal/catalog"
	"github.com/ikkim/shopgenie-backend/internal/pricing"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrEngineClosed    = errors.New("engine is closed")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidOption   = errors.New("invalid product option")
	ErrEmptyCart       = errors.New("cart is empty")
)

type Options struct {
	Catalog       *catalog.Catalog
	Gateway       service.PersistenceGateway
	Orders        service.OrderHistory
	Shipping      pricing.ShippingPolicy
	HistoryLimit  int
	CheckoutDelay time.Duration
}

// State is a point-in-time copy of everything the engine owns.
type State struct {
	Cart     []model.CartLine    `json:"cart"`
	Totals   model.CartTotals    `json:"totals"`
	Wishlist []model.Product     `json:"wishlist"`
	History  []model.Product     `json:"history"`
	User     *model.UserIdentity `json:"user"`
}

// Event tells subscribers which store changed.
type Event struct {
	Store service.StoreKey `json:"store"`
	State State            `json:"state"`
	At    time.Time        `json:"at"`
}

// ProductView is what a product page needs: the product, its default option
// selection and the price for that selection.
type ProductView struct {
	Product          model.Product         `json:"product"`
	DefaultSelection model.SelectedOptions `json:"default_selection,omitempty"`
	EffectivePrice   decimal.Decimal       `json:"effective_price"`
	Saved            bool                  `json:"saved"`
}

type Engine struct {
	catalog       *catalog.Catalog
	gateway       service.PersistenceGateway
	orders        service.OrderHistory
	checkoutDelay time.Duration

	mu       sync.Mutex
	cart     service.CartStore
	wishlist service.WishlistStore
	history  service.HistoryStore
	session  service.SessionStore
	closed   bool
	done     chan struct{}

	subMu       sync.Mutex
	subscribers map[int]func(Event)
	nextSub     int
}

func New(opts Options) *Engine {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Orders == nil {
		opts.Orders = service.NewSampleOrderHistory(opts.Catalog)
	}
	if opts.Shipping == (pricing.ShippingPolicy{}) {
		opts.Shipping = pricing.DefaultShippingPolicy()
	}

	return &Engine{
		catalog:       opts.Catalog,
		gateway:       opts.Gateway,
		orders:        opts.Orders,
		checkoutDelay: opts.CheckoutDelay,
		cart:          service.NewCartStore(opts.Shipping),
		wishlist:      service.NewWishlistStore(),
		history:       service.NewHistoryStore(opts.HistoryLimit),
		session:       service.NewSessionStore(),
		done:          make(chan struct{}),
		subscribers:   make(map[int]func(Event)),
	}
}

// Load restores every store from its persisted snapshot. Missing or corrupt
// snapshots leave that store empty; Load itself never fails.
func (e *Engine) Load(ctx context.Context) {
	if e.gateway == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var lines []model.CartLine
	if e.gateway.Load(ctx, service.StoreCart, &lines) {
		e.cart.Restore(lines)
	}
	var wishlist []model.Product
	if e.gateway.Load(ctx, service.StoreWishlist, &wishlist) {
		e.wishlist.Restore(wishlist)
	}
	var history []model.Product
	if e.gateway.Load(ctx, service.StoreHistory, &history) {
		e.history.Restore(history)
	}
	var user *model.UserIdentity
	if e.gateway.Load(ctx, service.StoreSession, &user) {
		e.session.Restore(user)
	}

	logger.Info("Engine state loaded", map[string]interface{}{
		"cart_lines": len(e.cart.Lines()),
		"wishlist":   len(e.wishlist.Items()),
		"history":    len(e.history.Items()),
	})
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Orders returns the order history the engine replays from.
func (e *Engine) Orders() service.OrderHistory {
	return e.orders
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) Totals() model.CartTotals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.Totals()
}

func (e *Engine) stateLocked() State {
	s := State{
		Cart:     e.cart.Lines(),
		Totals:   e.cart.Totals(),
		Wishlist: e.wishlist.Items(),
		History:  e.history.Items(),
	}
	if user, ok := e.session.Current(); ok {
		s.User = &user
	}
	return s
}

// mutate runs fn under the engine lock. When fn reports a change the store is
// persisted and subscribers are notified after the lock is released.
func (e *Engine) mutate(ctx context.Context, key service.StoreKey, fn func() (bool, error)) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	changed, err := fn()
	if err != nil || !changed {
		e.mu.Unlock()
		return err
	}
	e.persistLocked(ctx, key)
	evt := Event{Store: key, State: e.stateLocked(), At: time.Now().UTC()}
	e.mu.Unlock()

	e.publish(evt)
	return nil
}

func (e *Engine) persistLocked(ctx context.Context, key service.StoreKey) {
	if e.gateway == nil {
		return
	}
	// a caller giving up must not drop the write
	ctx = context.WithoutCancel(ctx)

	switch key {
	case service.StoreCart:
		_ = e.gateway.Save(ctx, key, e.cart.Lines())
	case service.StoreWishlist:
		_ = e.gateway.Save(ctx, key, e.wishlist.Items())
	case service.StoreHistory:
		_ = e.gateway.Save(ctx, key, e.history.Items())
	case service.StoreSession:
		if user, ok := e.session.Current(); ok {
			_ = e.gateway.Save(ctx, key, user)
		} else {
			_ = e.gateway.Remove(ctx, key)
		}
	}
}

func (e *Engine) product(id string) (model.Product, error) {
	p, ok := e.catalog.FindByID(id)
	if !ok {
		logger.Warn("Product not found", map[string]interface{}{
			"product_id": id,
		})
		return model.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

// AddToCart adds quantity units of a catalog product with the given options.
// The selection must name options the product offers with allowed values.
func (e *Engine) AddToCart(ctx context.Context, productID string, selected model.SelectedOptions, quantity int) (model.CartLine, error) {
	p, err := e.product(productID)
	if err != nil {
		return model.CartLine{}, err
	}
	if err := pricing.ValidateSelection(p, selected); err != nil {
		return model.CartLine{}, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}

	var line model.CartLine
	err = e.mutate(ctx, service.StoreCart, func() (bool, error) {
		line = e.cart.Add(p, selected, quantity)
		return true, nil
	})
	if err != nil {
		return model.CartLine{}, err
	}

	logger.Info("Item added to cart", map[string]interface{}{
		"product_id":   productID,
		"cart_item_id": line.LineID,
		"quantity":     line.Quantity,
	})
	return line, nil
}

// UpdateQuantity changes a line's quantity by delta, never below 1. Unknown
// lines are ignored.
func (e *Engine) UpdateQuantity(ctx context.Context, lineID string, delta int) error {
	return e.mutate(ctx, service.StoreCart, func() (bool, error) {
		return e.cart.UpdateQuantity(lineID, delta), nil
	})
}

func (e *Engine) RemoveFromCart(ctx context.Context, lineID string) error {
	return e.mutate(ctx, service.StoreCart, func() (bool, error) {
		return e.cart.Remove(lineID), nil
	})
}

func (e *Engine) ClearCart(ctx context.Context) error {
	return e.mutate(ctx, service.StoreCart, func() (bool, error) {
		return e.cart.Clear(), nil
	})
}

// Reorder replays a past order into the cart and returns how many items were
// added.
func (e *Engine) Reorder(ctx context.Context, orderID string) (int, error) {
	order, ok := e.orders.FindByID(orderID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return e.ReorderItems(ctx, order)
}

// ReorderItems replays the given order without consulting the catalog.
func (e *Engine) ReorderItems(ctx context.Context, order model.Order) (int, error) {
	var n int
	err := e.mutate(ctx, service.StoreCart, func() (bool, error) {
		n = e.cart.Reorder(order)
		return n > 0, nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("Order replayed into cart", map[string]interface{}{
		"order_id": order.ID,
		"items":    n,
	})
	return n, nil
}

// ToggleWishlist saves or unsaves a product and reports whether it is saved.
// A saved product that has since left the catalog can still be unsaved.
func (e *Engine) ToggleWishlist(ctx context.Context, productID string) (bool, error) {
	p, inCatalog := e.catalog.FindByID(productID)
	var saved bool
	err := e.mutate(ctx, service.StoreWishlist, func() (bool, error) {
		if !inCatalog {
			if !e.wishlist.Contains(productID) {
				_, err := e.product(productID)
				return false, err
			}
			logger.Info("Removing retired product from wishlist", map[string]interface{}{
				"product_id": productID,
			})
			p = model.Product{ID: productID}
		}
		saved = e.wishlist.Toggle(p)
		return true, nil
	})
	return saved, err
}

func (e *Engine) RecordView(ctx context.Context, product model.Product) error {
	return e.mutate(ctx, service.StoreHistory, func() (bool, error) {
		e.history.RecordView(product)
		return true, nil
	})
}

// ViewProduct looks a product up, records the view and returns the default
// selection with its price.
func (e *Engine) ViewProduct(ctx context.Context, productID string) (ProductView, error) {
	p, err := e.product(productID)
	if err != nil {
		return ProductView{}, err
	}
	var saved bool
	err = e.mutate(ctx, service.StoreHistory, func() (bool, error) {
		e.history.RecordView(p)
		saved = e.wishlist.Contains(p.ID)
		return true, nil
	})
	if err != nil {
		return ProductView{}, err
	}

	selection := pricing.DefaultSelection(p)
	return ProductView{
		Product:          p,
		DefaultSelection: selection,
		EffectivePrice:   pricing.EffectivePrice(p, selection),
		Saved:            saved,
	}, nil
}

// SignIn replaces the current identity. A nil identity signs in the demo user.
func (e *Engine) SignIn(ctx context.Context, identity *model.UserIdentity) (model.UserIdentity, error) {
	user := model.DemoUser
	if identity != nil {
		user = *identity
	}
	err := e.mutate(ctx, service.StoreSession, func() (bool, error) {
		e.session.SignIn(user)
		return true, nil
	})
	if err != nil {
		return model.UserIdentity{}, err
	}
	logger.Info("User signed in", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

func (e *Engine) SignOut(ctx context.Context) error {
	return e.mutate(ctx, service.StoreSession, func() (bool, error) {
		return e.session.SignOut(), nil
	})
}

// UpdateProfile merges the supplied fields into the signed-in identity.
func (e *Engine) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.UserIdentity, error) {
	var user model.UserIdentity
	err := e.mutate(ctx, service.StoreSession, func() (bool, error) {
		var err error
		user, err = e.session.UpdateProfile(update)
		return err == nil, err
	})
	return user, err
}

// Checkout simulates payment: it waits the configured delay, then empties the
// cart and returns what was bought. The wait ends early with the context's
// error, or ErrEngineClosed on shutdown, and the cart is left as it was.
func (e *Engine) Checkout(ctx context.Context) (model.Receipt, error) {
	e.mu.Lock()
	closed, empty := e.closed, len(e.cart.Lines()) == 0
	e.mu.Unlock()
	if closed {
		return model.Receipt{}, ErrEngineClosed
	}
	if empty {
		return model.Receipt{}, ErrEmptyCart
	}

	logger.Info("Processing checkout", map[string]interface{}{
		"delay": e.checkoutDelay.String(),
	})

	if e.checkoutDelay > 0 {
		timer := time.NewTimer(e.checkoutDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return model.Receipt{}, ctx.Err()
		case <-e.done:
			return model.Receipt{}, ErrEngineClosed
		}
	}

	var receipt model.Receipt
	err := e.mutate(ctx, service.StoreCart, func() (bool, error) {
		lines := e.cart.Lines()
		if len(lines) == 0 {
			return false, ErrEmptyCart
		}
		receipt = model.Receipt{Lines: lines, Totals: e.cart.Totals()}
		return e.cart.Clear(), nil
	})
	if err != nil {
		return model.Receipt{}, err
	}

	logger.Info("Checkout completed", map[string]interface{}{
		"items": receipt.Totals.ItemCount,
		"total": receipt.Totals.Total.StringFixed(2),
	})
	return receipt, nil
}

// Subscribe registers fn for every state change and returns a function that
// removes it. fn runs on the goroutine that made the change, after the
// engine lock is released.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subscribers, id)
			e.subMu.Unlock()
		})
	}
}

func (e *Engine) publish(evt Event) {
	e.subMu.Lock()
	fns := make([]func(Event), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

// Degraded lists stores whose last write failed.
func (e *Engine) Degraded() []service.StoreKey {
	if e.gateway == nil {
		return nil
	}
	return e.gateway.Degraded()
}

// RetryPersistence re-attempts failed writes and returns how many succeeded.
func (e *Engine) RetryPersistence(ctx context.Context) int {
	if e.gateway == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gateway.Retry(ctx)
}

// Close stops accepting operations, makes a last attempt at pending writes
// and drops all subscribers.
func (e *Engine) Close(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.done)
	if e.gateway != nil {
		e.gateway.Retry(ctx)
	}
	e.mu.Unlock()

	e.subMu.Lock()
	e.subscribers = make(map[int]func(Event))
	e.subMu.Unlock()

	logger.Info("Engine closed", nil)
}
