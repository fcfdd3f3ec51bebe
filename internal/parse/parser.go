// Package parse turns free-text shopping input ("3 bananas", "two apples",
// "rice 2kg") into an item name and a quantity.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Result is what Parse extracts from one line of input.
type Result struct {
	ItemName string  `json:"itemName"`
	Quantity float64 `json:"quantity"`
}

type spelled struct {
	word, digits string
	lead, trail  *regexp.Regexp
}

var numberWords = func() []spelled {
	pairs := [][2]string{
		{"a", "1"}, {"an", "1"}, {"one", "1"}, {"two", "2"}, {"three", "3"},
		{"four", "4"}, {"five", "5"}, {"six", "6"}, {"seven", "7"},
		{"eight", "8"}, {"nine", "9"}, {"ten", "10"},
	}
	out := make([]spelled, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, spelled{
			word:   p[0],
			digits: p[1],
			lead:   regexp.MustCompile(`^` + p[0] + `\s+`),
			trail:  regexp.MustCompile(`\s+` + p[0] + `$`),
		})
	}
	return out
}()

// Units recognised as a measurement suffix. Longer spellings come first so
// the alternation prefers "lbs" over "lb" and "ml" over "l".
var Units = []string{"kg", "lbs", "lb", "oz", "ml", "g", "l"}

var (
	unitAlt    = strings.Join(Units, "|")
	leadingRe  = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(?:(?:` + unitAlt + `)\b\s*)?(.*)$`)
	trailingRe = regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)(?:\s*(?:` + unitAlt + `))?$`)
	unitTailRe = regexp.MustCompile(`(?:^|\s+)(?:` + unitAlt + `)$`)
)

// Parse never fails: anything it cannot make sense of becomes a name with
// quantity 1.
func Parse(raw string) Result {
	text := strings.TrimSpace(strings.ToLower(raw))
	text = replaceNumberWords(text)

	quantity := 1.0
	name := text

	if m := leadingRe.FindStringSubmatch(text); m != nil {
		quantity = number(m[1])
		name = strings.TrimSpace(m[2])
	} else if m := trailingRe.FindStringSubmatch(text); m != nil {
		name = strings.TrimSpace(m[1])
		quantity = number(m[2])
	}

	name = unitTailRe.ReplaceAllString(name, "")

	return Result{ItemName: TitleCase(name), Quantity: quantity}
}

// replaceNumberWords only touches a spelled number that is the first or the
// last word; "one" in "stone fruit one" is replaced, "bone broth" is not.
func replaceNumberWords(s string) string {
	for _, n := range numberWords {
		s = n.lead.ReplaceAllLiteralString(s, n.digits+" ")
		s = n.trail.ReplaceAllLiteralString(s, " "+n.digits)
	}
	return s
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1
	}
	return v
}

// TitleCase upper-cases the first rune of every space-separated word and
// leaves the rest of each word as is.
func TitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 || r == utf8.RuneError {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
