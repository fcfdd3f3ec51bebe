package model

import (
	"math"
	"strconv"

	"github.com/google/uuid"
)

// Item is the domain model for a shopping-list entry.
// The category is not a field: it is the key of the list the item lives in.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Translation string  `json:"translation"`
	Icon        string  `json:"icon,omitempty"`
	Purchased   bool    `json:"purchased"`
	Quantity    float64 `json:"quantity"`

	// IsNew is set at creation and cleared once the item has been shown.
	IsNew bool `json:"-"`
}

// NewItem builds an unpurchased item with a fresh time-ordered ID.
func NewItem(name, translation, icon string, quantity float64) Item {
	if translation == "" {
		translation = name
	}
	return Item{
		ID:          NewID(),
		Name:        name,
		Translation: translation,
		Icon:        icon,
		Quantity:    ClampQuantity(quantity),
		IsNew:       true,
	}
}

// NewID returns a UUIDv7, which sorts by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// v7 only fails when the random source does
		return uuid.NewString()
	}
	return id.String()
}

// ClampQuantity enforces the floor of 1 on every quantity write.
func ClampQuantity(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 1 {
		return 1
	}
	return q
}

// FormatQuantity prints whole numbers without a decimal part.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
