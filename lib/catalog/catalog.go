package catalog

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jasonrodrigues28/product-landing-page/lib/common"
	"github.com/jasonrodrigues28/product-landing-page/lib/idalloc"
	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("catalog")

// ProductsKey is the store key holding the product list.
const ProductsKey = "catalog/products"

// Catalog keeps the product list of all sellers and assigns product ids
// through an id allocator, one namespace per seller email.
type Catalog struct {
	mu       sync.RWMutex
	kv       store.IStore
	ids      idalloc.IAllocator
	products []Product
	onDelete []DeleteHook
	now      func() time.Time
}

// DeleteHook is called with the ids of removed products after the catalog
// has been persisted. It runs without holding the catalog lock.
type DeleteHook func(productIDs []string) error

// New loads the catalog persisted in kv.
func New(kv store.IStore, ids idalloc.IAllocator) (*Catalog, error) {
	c := &Catalog{
		kv:       kv,
		ids:      ids,
		products: make([]Product, 0),
		now:      func() time.Time { return time.Now().UTC() },
	}

	data, found, err := kv.Get(ProductsKey)
	if err != nil {
		return nil, fmt.Errorf("catalog: load products: %w", err)
	}
	if found {
		if err := json.Unmarshal(data, &c.products); err != nil {
			return nil, fmt.Errorf("catalog: decode products: %w", err)
		}
	}
	Logger.Debugf("loaded %d products", len(c.products))
	return c, nil
}

// persist writes the product list. The caller must hold mu.
func (c *Catalog) persist() error {
	data, err := json.Marshal(c.products)
	if err != nil {
		return fmt.Errorf("catalog: encode products: %w", err)
	}
	if err := c.kv.Set(ProductsKey, data); err != nil {
		return fmt.Errorf("catalog: save products: %w", err)
	}
	return nil
}

// indexOf returns the position of id or -1. The caller must hold mu.
func (c *Catalog) indexOf(id string) int {
	return slices.IndexFunc(c.products, func(p Product) bool { return p.ProductID == id })
}

// OnDelete registers a hook that runs whenever products leave the catalog
// through DeleteMany, Reset or Sync.
func (c *Catalog) OnDelete(hook DeleteHook) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onDelete = append(c.onDelete, hook)
}

// notifyDelete runs the delete hooks and returns the first error. The caller
// must not hold mu.
func (c *Catalog) notifyDelete(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	c.mu.RLock()
	hooks := slices.Clone(c.onDelete)
	c.mu.RUnlock()

	var first error
	for _, hook := range hooks {
		if err := hook(ids); err != nil {
			Logger.Warningf("delete hook failed for %v: %v", ids, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// productIDs returns the ids of all products. The caller must hold mu.
func (c *Catalog) productIDs() []string {
	ids := make([]string, len(c.products))
	for i, p := range c.products {
		ids[i] = p.ProductID
	}
	return ids
}

// hasProducts reports whether seller owns any product. The caller must hold mu.
func (c *Catalog) hasProducts(seller string) bool {
	return slices.ContainsFunc(c.products, func(p Product) bool { return p.SellerID == seller })
}

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

// sellerPrefix returns the id prefix to ensure for seller. A seller's first
// product gets the initials of its name, extended with letters while another
// seller holds that prefix. Product ids therefore stay unique across sellers.
// The caller must hold mu.
func (c *Catalog) sellerPrefix(seller Seller) (string, error) {
	initials := idalloc.InitialsFromName(seller.Name)
	if c.hasProducts(seller.Email) {
		return initials, nil
	}

	taken := make(map[string]bool)
	for _, p := range c.products {
		if prefix, _, ok := idalloc.ParseIdentifier(p.ProductID); ok {
			taken[prefix] = true
		}
	}
	var own *common.CounterState
	for _, ns := range c.ids.Namespaces() {
		state, err := c.ids.State(ns)
		if err != nil {
			return "", err
		}
		if ns == seller.Email {
			own = &state
			continue
		}
		taken[state.Prefix] = true
	}

	if own != nil && own.Prefix != "" {
		if taken[own.Prefix] {
			return "", fmt.Errorf("%w: %s (seller %s)", ErrPrefixInUse, own.Prefix, seller.Email)
		}
		return own.Prefix, nil
	}
	return uniquePrefix(initials, taken), nil
}

// uniquePrefix appends A, B, ... Z, AA, AB, ... to base until the result is
// not taken.
func uniquePrefix(base string, taken map[string]bool) string {
	candidate := base
	for i := 1; taken[candidate]; i++ {
		var suffix []byte
		for n := i; n > 0; n = (n - 1) / 26 {
			suffix = append([]byte{byte('A' + (n-1)%26)}, suffix...)
		}
		candidate = base + string(suffix)
	}
	return candidate
}

// Add validates draft, assigns the next id of the seller and stores the product.
func (c *Catalog) Add(seller Seller, draft Draft) (Product, error) {
	if seller.Email == "" {
		return Product{}, invalid("seller email is required")
	}
	if err := draft.Validate(); err != nil {
		return Product{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prefix, err := c.sellerPrefix(seller)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: prepare id namespace: %w", err)
	}
	if err := c.ids.Ensure(seller.Email, prefix); err != nil {
		return Product{}, fmt.Errorf("catalog: prepare id namespace: %w", err)
	}
	id, err := c.ids.Allocate(seller.Email)
	if id == "" {
		return Product{}, fmt.Errorf("catalog: allocate product id: %w", err)
	}
	if err != nil {
		// the id is reserved in memory; the next successful write persists it
		Logger.Warningf("allocated %s without persisting the counter: %v", id, err)
	}

	now := c.now()
	p := Product{
		ProductID:     id,
		SellerID:      seller.Email,
		SellerName:    seller.Name,
		Title:         draft.Title,
		Description:   draft.Description,
		Category:      draft.Category,
		Price:         draft.Price,
		Stock:         draft.Stock,
		ColorVariants: slices.Clone(draft.ColorVariants),
		ImageURL:      draft.ImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if len(p.ColorVariants) > 0 {
		if draft.StockByColor != nil {
			p.StockByColor = make(map[string]int, len(p.ColorVariants))
			for _, color := range p.ColorVariants {
				p.StockByColor[color] = draft.StockByColor[color]
			}
		} else {
			p.StockByColor = DistributeStock(draft.Stock, p.ColorVariants)
		}
	}

	c.products = append(c.products, p)
	Logger.Infof("added product %s for seller %s", id, seller.Email)
	return p.clone(), c.persist()
}

// Update applies patch to the product id. The id, seller and creation time
// never change. When the color variants change, the stock of surviving colors
// is kept and new colors start at zero.
func (c *Catalog) Update(id string, patch ProductPatch) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	p := c.products[i].clone()

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if err := validateFields(p.Title, p.Description, p.Price, p.Stock); err != nil {
		return Product{}, err
	}
	if patch.ColorVariants != nil {
		if err := validateColors(patch.ColorVariants); err != nil {
			return Product{}, err
		}
		stock := make(map[string]int, len(patch.ColorVariants))
		for _, color := range patch.ColorVariants {
			stock[color] = p.StockByColor[color]
		}
		p.ColorVariants = slices.Clone(patch.ColorVariants)
		p.StockByColor = stock
	}

	p.UpdatedAt = c.now()
	c.products[i] = p
	return p.clone(), c.persist()
}

// Delete removes the product and frees its id. A seller without products left
// gets a fresh id namespace.
func (c *Catalog) Delete(id string) (bool, error) {
	return c.DeleteMany([]string{id})
}

// DeleteMany removes all listed products. Ids are freed with one batch per
// seller. It reports whether any product was removed.
func (c *Catalog) DeleteMany(ids []string) (bool, error) {
	removed, err := c.deleteMany(ids)
	if len(removed) == 0 {
		return false, err
	}
	if hookErr := c.notifyDelete(removed); err == nil {
		err = hookErr
	}
	return true, err
}

func (c *Catalog) deleteMany(ids []string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string
	freed := make(map[string][]string)
	for _, id := range ids {
		i := c.indexOf(id)
		if i < 0 {
			continue
		}
		seller := c.products[i].SellerID
		freed[seller] = append(freed[seller], id)
		removed = append(removed, id)
		c.products = slices.Delete(c.products, i, i+1)
	}
	if len(removed) == 0 {
		return nil, nil
	}

	var errs []error
	for _, seller := range slices.Sorted(maps.Keys(freed)) {
		if err := c.ids.FreeMany(seller, freed[seller]); err != nil {
			errs = append(errs, err)
		}
		if !c.hasProducts(seller) {
			if err := c.ids.Reset(seller); err != nil {
				errs = append(errs, err)
			}
		}
		Logger.Infof("deleted %d products of seller %s", len(freed[seller]), seller)
	}
	if err := c.persist(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return removed, errs[0]
	}
	return removed, nil
}

// Reset removes every product and resets the id namespace of every seller.
func (c *Catalog) Reset() error {
	removed, err := c.reset()
	if err != nil {
		return err
	}
	return c.notifyDelete(removed)
}

func (c *Catalog) reset() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.productIDs()
	sellers := c.sellers(c.ids.Namespaces())

	c.products = c.products[:0]
	for _, seller := range sellers {
		if err := c.ids.Reset(seller); err != nil {
			return nil, fmt.Errorf("catalog: reset ids of %s: %w", seller, err)
		}
	}
	Logger.Infof("catalog reset (%d sellers)", len(sellers))
	return removed, c.persist()
}

// sellers adds the seller of every product to known. The caller must hold mu.
func (c *Catalog) sellers(known []string) []string {
	for _, p := range c.products {
		if !slices.Contains(known, p.SellerID) {
			known = append(known, p.SellerID)
		}
	}
	return known
}

// Sync replaces the product list with a snapshot from a remote source and
// rebuilds the id namespace of every seller from it. Sellers that no longer
// own products are reset.
func (c *Catalog) Sync(products []Product) error {
	removed, err := c.sync(products)
	if err != nil {
		return err
	}
	return c.notifyDelete(removed)
}

func (c *Catalog) sync(products []Product) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.sellers(c.ids.Namespaces())
	dropped := c.productIDs()

	bySeller := make(map[string][]string)
	c.products = make([]Product, 0, len(products))
	for _, p := range products {
		c.products = append(c.products, p.clone())
		bySeller[p.SellerID] = append(bySeller[p.SellerID], p.ProductID)
	}
	removed := slices.DeleteFunc(dropped, func(id string) bool { return c.indexOf(id) >= 0 })

	for _, seller := range slices.Sorted(maps.Keys(bySeller)) {
		if err := c.ids.RebuildFromExisting(seller, bySeller[seller]); err != nil {
			return nil, fmt.Errorf("catalog: rebuild ids of %s: %w", seller, err)
		}
	}
	for _, seller := range previous {
		if _, ok := bySeller[seller]; !ok {
			if err := c.ids.Reset(seller); err != nil {
				return nil, fmt.Errorf("catalog: reset ids of %s: %w", seller, err)
			}
		}
	}

	Logger.Infof("synced %d products of %d sellers", len(c.products), len(bySeller))
	return removed, c.persist()
}

// UpdateStock sets the stock of a product, or of one color variant when color
// is not empty.
func (c *Catalog) UpdateStock(id string, stock int, color string) error {
	if stock < 0 {
		return invalid("stock must not be negative")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	p := &c.products[i]
	if color != "" && p.StockByColor != nil {
		p.StockByColor[color] = stock
	} else {
		p.Stock = stock
	}
	p.UpdatedAt = c.now()
	return c.persist()
}

// IncrementUnitsSold adds qty to the sales counter. A known color also counts
// towards the per-color counter; the total is then the sum over colors.
func (c *Catalog) IncrementUnitsSold(id string, qty int, color string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	c.products[i].recordSale(qty, color)
	c.products[i].UpdatedAt = c.now()
	return c.persist()
}

// Checkout applies purchased cart lines. A line is applied only if the
// product exists and enough stock is left; it returns the number of applied lines.
func (c *Catalog) Checkout(lines []CheckoutLine) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	applied := 0
	for _, line := range lines {
		i := c.indexOf(line.ProductID)
		if i < 0 || line.Quantity <= 0 {
			Logger.Debugf("checkout: skipping line %+v", line)
			continue
		}
		p := &c.products[i]
		if line.Color != "" {
			if p.StockByColor == nil || p.StockByColor[line.Color] < line.Quantity {
				continue
			}
			p.StockByColor[line.Color] -= line.Quantity
		} else {
			if p.Stock < line.Quantity {
				continue
			}
			p.Stock -= line.Quantity
		}
		p.recordSale(line.Quantity, line.Color)
		p.UpdatedAt = c.now()
		applied++
	}
	if applied == 0 {
		return 0, nil
	}
	return applied, c.persist()
}

func (p *Product) recordSale(qty int, color string) {
	if color != "" && p.HasColor(color) {
		if p.UnitsSoldByColor == nil {
			p.UnitsSoldByColor = make(map[string]int)
		}
		p.UnitsSoldByColor[color] += qty
		total := 0
		for _, n := range p.UnitsSoldByColor {
			total += n
		}
		p.UnitsSold = total
		return
	}
	p.UnitsSold += qty
}

// --------------------------------------------------------------------------
// Queries
// --------------------------------------------------------------------------

// ByID returns the product with the given id.
func (c *Catalog) ByID(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return Product{}, false
	}
	return c.products[i].clone(), true
}

func (c *Catalog) filter(keep func(Product) bool) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p.clone())
		}
	}
	return out
}

// ByCategory returns the products of a category in insertion order.
func (c *Catalog) ByCategory(category string) []Product {
	return c.filter(func(p Product) bool { return p.Category == category })
}

// BySeller returns the products of a seller in insertion order.
func (c *Catalog) BySeller(email string) []Product {
	return c.filter(func(p Product) bool { return p.SellerID == email })
}

// List returns all products in insertion order.
func (c *Catalog) List() []Product {
	return c.filter(func(Product) bool { return true })
}
