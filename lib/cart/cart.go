package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jasonrodrigues28/product-landing-page/lib/catalog"
	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("cart")

const (
	// MaxItems is the largest number of units a cart may hold.
	MaxItems = 20
	// KeyPrefix is the store key prefix of the per-owner carts.
	KeyPrefix = "carts/"
)

var (
	// ErrCartFull is returned when adding would exceed MaxItems units.
	ErrCartFull = errors.New("cart: cart is full")
	// ErrInvalidItem is returned for unknown colors and non-positive quantities.
	ErrInvalidItem = errors.New("cart: invalid item")
	// ErrUnavailable is returned for products that are not in the catalog.
	ErrUnavailable = errors.New("cart: product unavailable")
	// ErrOutOfStock is returned when the cart would hold more units than are in stock.
	ErrOutOfStock = errors.New("cart: not enough stock")
	// ErrNoOwner is returned by Open for an empty owner.
	ErrNoOwner = errors.New("cart: owner is required")
)

// Products is the part of the catalog a cart needs.
type Products interface {
	ByID(id string) (catalog.Product, bool)
	Checkout(lines []catalog.CheckoutLine) (applied int, err error)
}

var _ Products = (*catalog.Catalog)(nil)

// Item is one cart line.
type Item struct {
	ProductID     string    `json:"id"`
	Title         string    `json:"title"`
	Price         float64   `json:"price"`
	Quantity      int       `json:"quantity"`
	SelectedColor string    `json:"selectedColor,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
}

// mu serializes the read-modify-write cycles of all carts in this process.
var mu sync.Mutex

// Cart is the shopping cart of one owner, stored under KeyPrefix+owner. Every
// operation reads the stored cart, so several handles on the same owner stay
// consistent.
type Cart struct {
	kv       store.IStore
	key      string
	products Products
	now      func() time.Time
}

// Open returns the cart of owner.
func Open(kv store.IStore, owner string, products Products) (*Cart, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrNoOwner
	}
	return &Cart{
		kv:       kv,
		key:      KeyPrefix + owner,
		products: products,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func load(kv store.IStore, key string) ([]Item, error) {
	data, found, err := kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("cart: load %s: %w", key, err)
	}
	items := make([]Item, 0)
	if found {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("cart: decode %s: %w", key, err)
		}
	}
	return items, nil
}

func save(kv store.IStore, key string, items []Item) error {
	if len(items) == 0 {
		if err := kv.Delete(key); err != nil {
			return fmt.Errorf("cart: save %s: %w", key, err)
		}
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: encode %s: %w", key, err)
	}
	if err := kv.Set(key, data); err != nil {
		return fmt.Errorf("cart: save %s: %w", key, err)
	}
	return nil
}

// update runs fn on the stored items and saves the result.
func (c *Cart) update(fn func(items []Item) ([]Item, error)) error {
	mu.Lock()
	defer mu.Unlock()

	items, err := load(c.kv, c.key)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return save(c.kv, c.key, items)
}

func (c *Cart) items() ([]Item, error) {
	mu.Lock()
	defer mu.Unlock()

	return load(c.kv, c.key)
}

func totalItems(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

// Add puts quantity units of the product into the cart. Lines are kept per
// product and color. The product must exist and have enough stock of the
// chosen color for the whole line.
func (c *Cart) Add(productID, color string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidItem, quantity)
	}
	p, ok := c.products.ByID(productID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnavailable, productID)
	}
	if color != "" && !p.HasColor(color) {
		return fmt.Errorf("%w: %s has no color %q", ErrInvalidItem, productID, color)
	}
	stock := p.Stock
	if color != "" {
		stock = p.StockByColor[color]
	}

	return c.update(func(items []Item) ([]Item, error) {
		if totalItems(items)+quantity > MaxItems {
			return nil, fmt.Errorf("%w: at most %d items", ErrCartFull, MaxItems)
		}

		i := slices.IndexFunc(items, func(item Item) bool {
			return item.ProductID == productID && item.SelectedColor == color
		})
		inCart := 0
		if i >= 0 {
			inCart = items[i].Quantity
		}
		if stock < inCart+quantity {
			return nil, fmt.Errorf("%w: %s has %d left", ErrOutOfStock, productID, stock)
		}

		if i >= 0 {
			items[i].Quantity += quantity
			return items, nil
		}
		return append(items, Item{
			ProductID:     productID,
			Title:         p.Title,
			Price:         p.Price,
			Quantity:      quantity,
			SelectedColor: color,
			AddedAt:       c.now(),
		}), nil
	})
}

// Remove drops every line of the product.
func (c *Cart) Remove(productID string) error {
	return c.update(func(items []Item) ([]Item, error) {
		return slices.DeleteFunc(items, func(item Item) bool { return item.ProductID == productID }), nil
	})
}

func (c *Cart) Clear() error {
	return c.update(func([]Item) ([]Item, error) { return nil, nil })
}

// Prune drops the lines of products that left the catalog and returns how
// many lines were dropped.
func (c *Cart) Prune() (int, error) {
	dropped := 0
	err := c.update(func(items []Item) ([]Item, error) {
		before := len(items)
		items = slices.DeleteFunc(items, func(item Item) bool {
			_, ok := c.products.ByID(item.ProductID)
			return !ok
		})
		dropped = before - len(items)
		return items, nil
	})
	return dropped, err
}

// Checkout buys the cart through the catalog and empties it. Lines without
// enough stock are skipped by the catalog; applied counts the bought lines.
func (c *Cart) Checkout() (applied int, err error) {
	err = c.update(func(items []Item) ([]Item, error) {
		if len(items) == 0 {
			return items, nil
		}
		applied, err = c.products.Checkout(checkoutLines(items))
		if err != nil {
			return nil, err
		}
		Logger.Infof("checked out %s: %d of %d lines applied", c.key, applied, len(items))
		return nil, nil
	})
	return applied, err
}

// DropProducts removes the lines of the given products from every cart in kv
// and returns the number of dropped lines. It is meant as a catalog delete hook.
func DropProducts(kv store.IStore, productIDs []string) (int, error) {
	mu.Lock()
	defer mu.Unlock()

	keys, err := kv.Keys(KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("cart: list carts: %w", err)
	}
	dropped := 0
	for _, key := range keys {
		items, err := load(kv, key)
		if err != nil {
			return dropped, err
		}
		before := len(items)
		items = slices.DeleteFunc(items, func(item Item) bool { return slices.Contains(productIDs, item.ProductID) })
		if len(items) == before {
			continue
		}
		if err := save(kv, key, items); err != nil {
			return dropped, err
		}
		dropped += before - len(items)
	}
	if dropped > 0 {
		Logger.Debugf("dropped %d cart lines of deleted products %v", dropped, productIDs)
	}
	return dropped, nil
}

// --------------------------------------------------------------------------
// Queries
// --------------------------------------------------------------------------

// Items returns the cart lines in insertion order.
func (c *Cart) Items() ([]Item, error) {
	return c.items()
}

// TotalItems is the number of units in the cart.
func (c *Cart) TotalItems() (int, error) {
	items, err := c.items()
	if err != nil {
		return 0, err
	}
	return totalItems(items), nil
}

// TotalPrice is the sum of price times quantity over all lines.
func (c *Cart) TotalPrice() (float64, error) {
	items, err := c.items()
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total, nil
}

// CheckoutItems converts the cart lines for catalog.Catalog.Checkout.
func (c *Cart) CheckoutItems() ([]catalog.CheckoutLine, error) {
	items, err := c.items()
	if err != nil {
		return nil, err
	}
	return checkoutLines(items), nil
}

func checkoutLines(items []Item) []catalog.CheckoutLine {
	lines := make([]catalog.CheckoutLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, catalog.CheckoutLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Color:     item.SelectedColor,
		})
	}
	return lines
}
