package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Result
	}{
		{"leading number", "3 bananas", Result{"Bananas", 3}},
		{"trailing number", "bananas 3", Result{"Bananas", 3}},
		{"spelled leading", "two apples", Result{"Apples", 2}},
		{"spelled trailing", "apples five", Result{"Apples", 5}},
		{"article a", "a melon", Result{"Melon", 1}},
		{"article an", "an orange", Result{"Orange", 1}},
		{"glued unit", "2kg rice", Result{"Rice", 2}},
		{"spaced unit", "2 kg rice", Result{"Rice", 2}},
		{"trailing unit after number", "rice 2kg", Result{"Rice", 2}},
		{"unit word trailing name", "rice kg", Result{"Rice", 1}},
		{"litre", "1.5 l milk", Result{"Milk", 1.5}},
		{"fraction not rounded", "0.5 cheese", Result{"Cheese", 0.5}},
		{"no number", "olive oil", Result{"Olive Oil", 1}},
		{"only digits", "12", Result{"", 12}},
		{"mixed case and padding", "  PEANUT butter  ", Result{"Peanut Butter", 1}},
		{"word starting with unit letters", "2 lemons", Result{"Lemons", 2}},
		{"name ending in g is not a unit", "egg", Result{"Egg", 1}},
		{"spelled number mid string untouched", "stone fruit", Result{"Stone Fruit", 1}},
		{"spelled word alone untouched", "two", Result{"Two", 1}},
		{"empty", "", Result{"", 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestTitleCaseKeepsRestOfWord(t *testing.T) {
	assert.Equal(t, "McDonald's Fries", TitleCase("mcDonald's fries"))
	assert.Equal(t, "Éclair", TitleCase("éclair"))
	assert.Equal(t, "A  B", TitleCase("a  b"))
}
