package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	it := NewItem("Bananas", "", "🍎", 3)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, "Bananas", it.Translation, "empty translation falls back to name")
	assert.False(t, it.Purchased)
	assert.True(t, it.IsNew)
	assert.Equal(t, 3.0, it.Quantity)
}

func TestNewIDUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 500; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 1},
		{-5, 1},
		{0.5, 1},
		{1, 1},
		{2.5, 2.5},
		{math.NaN(), 1},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampQuantity(tt.in), "ClampQuantity(%v)", tt.in)
	}
}

func TestItemIsNewNotPersisted(t *testing.T) {
	b, err := json.Marshal(NewItem("Milk", "Leche", "🥛", 1))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "isNew")
	assert.NotContains(t, string(b), "IsNew")

	var back Item
	require.NoError(t, json.Unmarshal(b, &back))
	assert.False(t, back.IsNew)
	assert.Equal(t, "Leche", back.Translation)
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "3", FormatQuantity(3))
	assert.Equal(t, "0.5", FormatQuantity(0.5))
	assert.Equal(t, "1.25", FormatQuantity(1.25))
}
