package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jasonrodrigues28/product-landing-page/lib/auth"
	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rs/xid"
)

var Logger = logger.GetLogger("review")

// KeyPrefix is the store key prefix of the per-product review lists.
const KeyPrefix = "reviews/"

var (
	ErrReviewNotFound = errors.New("review: review not found")
	ErrInvalidReview  = errors.New("review: invalid review")
)

// Review is one customer review of a product.
type Review struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"productId"`
	UserID     string     `json:"userId"`
	Username   string     `json:"username"`
	Rating     int        `json:"rating"`
	Title      string     `json:"title"`
	Comment    string     `json:"comment"`
	Date       time.Time  `json:"date"`
	Helpful    int        `json:"helpful"`
	NotHelpful int        `json:"notHelpful"`
	Verified   bool       `json:"verified"`
	Edited     bool       `json:"edited,omitempty"`
	EditDate   *time.Time `json:"editDate,omitempty"`
}

// Draft holds the user supplied fields of a review.
type Draft struct {
	Rating  int
	Title   string
	Comment string
}

func (d Draft) validate() error {
	if d.Rating < 1 || d.Rating > 5 {
		return fmt.Errorf("%w: rating %d outside of [1, 5]", ErrInvalidReview, d.Rating)
	}
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Comment) == "" {
		return fmt.Errorf("%w: title or comment required", ErrInvalidReview)
	}
	return nil
}

// Book holds the reviews of all products. Each product's list is stored under
// KeyPrefix+productID and loaded on first access.
type Book struct {
	mu      sync.RWMutex
	kv      store.IStore
	reviews map[string][]Review
	now     func() time.Time
}

func NewBook(kv store.IStore) *Book {
	return &Book{
		kv:      kv,
		reviews: make(map[string][]Review),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// load returns the reviews of productID. The caller must hold mu for writing.
func (b *Book) load(productID string) ([]Review, error) {
	if list, ok := b.reviews[productID]; ok {
		return list, nil
	}
	data, found, err := b.kv.Get(KeyPrefix + productID)
	if err != nil {
		return nil, fmt.Errorf("review: load %s: %w", productID, err)
	}
	list := make([]Review, 0)
	if found {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("review: decode %s: %w", productID, err)
		}
	}
	b.reviews[productID] = list
	return list, nil
}

func (b *Book) persist(productID string) error {
	list := b.reviews[productID]
	if len(list) == 0 {
		if err := b.kv.Delete(KeyPrefix + productID); err != nil {
			return fmt.Errorf("review: save %s: %w", productID, err)
		}
		return nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("review: encode %s: %w", productID, err)
	}
	if err := b.kv.Set(KeyPrefix+productID, data); err != nil {
		return fmt.Errorf("review: save %s: %w", productID, err)
	}
	return nil
}

// withReview runs fn on the review id of productID and persists the list.
func (b *Book) withReview(productID, id string, fn func(r *Review)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.load(productID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(list, func(r Review) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", ErrReviewNotFound, productID, id)
	}
	fn(&list[i])
	return b.persist(productID)
}

// Add stores a review written by the session's user. Anonymous sessions get
// auth.ErrNotAuthenticated.
func (b *Book) Add(s auth.Session, productID string, d Draft) (Review, error) {
	if !s.IsAuthenticated() {
		return Review{}, fmt.Errorf("review: %w", auth.ErrNotAuthenticated)
	}
	if productID == "" {
		return Review{}, fmt.Errorf("%w: product id required", ErrInvalidReview)
	}
	if err := d.validate(); err != nil {
		return Review{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.load(productID)
	if err != nil {
		return Review{}, err
	}
	r := Review{
		ID:        xid.New().String(),
		ProductID: productID,
		UserID:    s.Email,
		Username:  s.Username,
		Rating:    d.Rating,
		Title:     d.Title,
		Comment:   d.Comment,
		Date:      b.now(),
		Verified:  true,
	}
	b.reviews[productID] = append(list, r)
	Logger.Debugf("%s reviewed %s (%d stars)", s.Username, productID, d.Rating)
	return r, b.persist(productID)
}

// Update replaces rating, title and comment and marks the review as edited.
func (b *Book) Update(productID, id string, d Draft) error {
	if err := d.validate(); err != nil {
		return err
	}
	now := b.now()
	return b.withReview(productID, id, func(r *Review) {
		r.Rating = d.Rating
		r.Title = d.Title
		r.Comment = d.Comment
		r.Edited = true
		r.EditDate = &now
	})
}

// Delete removes a review and reports whether it existed.
func (b *Book) Delete(productID, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.load(productID)
	if err != nil {
		return false, err
	}
	n := len(list)
	list = slices.DeleteFunc(list, func(r Review) bool { return r.ID == id })
	if len(list) == n {
		return false, nil
	}
	b.reviews[productID] = list
	return true, b.persist(productID)
}

// MarkHelpful counts one helpful or not helpful vote.
func (b *Book) MarkHelpful(productID, id string, helpful bool) error {
	return b.withReview(productID, id, func(r *Review) {
		if helpful {
			r.Helpful++
		} else {
			r.NotHelpful++
		}
	})
}

// List returns the reviews of a product in submission order.
func (b *Book) List(productID string) ([]Review, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.load(productID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(list), nil
}

// AverageRating is the mean rating of a product, 0 without reviews.
func (b *Book) AverageRating(productID string) (float64, error) {
	list, err := b.List(productID)
	if err != nil || len(list) == 0 {
		return 0, err
	}
	sum := 0
	for _, r := range list {
		sum += r.Rating
	}
	return float64(sum) / float64(len(list)), nil
}

// Count is the number of reviews of a product.
func (b *Book) Count(productID string) (int, error) {
	list, err := b.List(productID)
	return len(list), err
}
