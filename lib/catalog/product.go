package catalog

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits of a product listing.
const (
	MaxTitleLength       = 50
	MaxDescriptionLength = 200
	MinPrice             = 1
	MaxPrice             = 100000
)

var (
	// ErrProductNotFound is returned for operations on unknown product ids.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrInvalidProduct wraps every validation failure.
	ErrInvalidProduct = errors.New("catalog: invalid product")
	// ErrPrefixInUse is returned when a seller's id prefix is held by another seller.
	ErrPrefixInUse = errors.New("catalog: id prefix used by another seller")
)

// Seller identifies the owner of a listing. Email is the id namespace, Name
// gives the prefix of new ids.
type Seller struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Product is one listing of the catalog.
type Product struct {
	ProductID        string         `json:"productId"`
	SellerID         string         `json:"sellerId"`
	SellerName       string         `json:"sellerName"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	Price            float64        `json:"price"`
	Stock            int            `json:"stock"`
	ColorVariants    []string       `json:"colorVariants,omitempty"`
	StockByColor     map[string]int `json:"stockByColor,omitempty"`
	UnitsSold        int            `json:"unitsSold"`
	UnitsSoldByColor map[string]int `json:"unitsSoldByColor,omitempty"`
	ImageURL         string         `json:"imageUrl,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// clone returns a deep copy so callers never share maps with the catalog.
func (p Product) clone() Product {
	p.ColorVariants = slices.Clone(p.ColorVariants)
	p.StockByColor = maps.Clone(p.StockByColor)
	p.UnitsSoldByColor = maps.Clone(p.UnitsSoldByColor)
	return p
}

// HasColor reports whether color is one of the product's variants.
func (p Product) HasColor(color string) bool {
	return slices.Contains(p.ColorVariants, color)
}

// Draft holds the seller supplied fields of a new product.
type Draft struct {
	Title         string
	Description   string
	Category      string
	Price         float64
	Stock         int
	ColorVariants []string
	// StockByColor overrides the even distribution of Stock over ColorVariants.
	StockByColor map[string]int
	ImageURL     string
}

// ProductPatch changes selected fields of a product. Nil fields are kept.
type ProductPatch struct {
	Title         *string
	Description   *string
	Category      *string
	Price         *float64
	Stock         *int
	ColorVariants []string
	ImageURL      *string
}

// CheckoutLine is one purchased cart line.
type CheckoutLine struct {
	ProductID string
	Quantity  int
	// Color selects a variant; empty buys from the general stock.
	Color string
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidProduct, fmt.Sprintf(format, args...))
}

func validateFields(title, description string, price float64, stock int) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid("title is required")
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return invalid("title has %d characters, at most %d allowed", n, MaxTitleLength)
	}
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		return invalid("description has %d characters, at most %d allowed", n, MaxDescriptionLength)
	}
	if price < MinPrice || price > MaxPrice {
		return invalid("price %.2f outside of [%d, %d]", price, MinPrice, MaxPrice)
	}
	if stock < 0 {
		return invalid("stock must not be negative")
	}
	return nil
}

func validateColors(colors []string) error {
	seen := make(map[string]bool, len(colors))
	for _, c := range colors {
		if strings.TrimSpace(c) == "" {
			return invalid("empty color variant")
		}
		if seen[c] {
			return invalid("duplicate color variant %q", c)
		}
		seen[c] = true
	}
	return nil
}

// Validate checks the draft against the listing limits.
func (d Draft) Validate() error {
	if err := validateFields(d.Title, d.Description, d.Price, d.Stock); err != nil {
		return err
	}
	if err := validateColors(d.ColorVariants); err != nil {
		return err
	}
	for color, n := range d.StockByColor {
		if !slices.Contains(d.ColorVariants, color) {
			return invalid("stock for unknown color %q", color)
		}
		if n < 0 {
			return invalid("stock of color %q must not be negative", color)
		}
	}
	return nil
}

// DistributeStock splits stock evenly over colors. The remainder goes to the
// earliest colors: 10 over [a b c] gives a=4 b=3 c=3.
func DistributeStock(stock int, colors []string) map[string]int {
	if len(colors) == 0 {
		return nil
	}
	base, remainder := stock/len(colors), stock%len(colors)
	out := make(map[string]int, len(colors))
	for i, color := range colors {
		out[color] = base
		if i < remainder {
			out[color]++
		}
	}
	return out
}
