// Package translate provides the translation gateways used to show item
// names in a second language.
//
// A Translator never fails from the caller's point of view: when a provider
// errors, times out or answers with nothing usable, the original text comes
// back unchanged and the failure is logged.
package translate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Translator interface {
	Translate(ctx context.Context, text, lang string) string
}

// SourceLang is the language items are typed in.
const SourceLang = "en"

// Languages offered as translation targets.
var Languages = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
	"hi": "Hindi",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"sv": "Swedish",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"zh": "Chinese",
}

// LanguageName returns the display name of a target code. SourceLang is
// accepted and means translations mirror the item names.
func LanguageName(code string) (string, bool) {
	if code == SourceLang {
		return "English", true
	}
	name, ok := Languages[code]
	return name, ok
}

// LanguageCodes returns the supported codes sorted.
func LanguageCodes() []string {
	out := make([]string, 0, len(Languages))
	for k := range Languages {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Options selects and configures a provider.
type Options struct {
	Provider string // mymemory, openai, none
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// New builds the translator named by opt.Provider.
func New(opt Options, log *zap.Logger) (Translator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch strings.ToLower(opt.Provider) {
	case "", "none", "off":
		return Identity{}, nil
	case "mymemory":
		return NewMyMemory(opt.BaseURL, opt.Timeout, log), nil
	case "openai":
		if opt.APIKey == "" {
			return nil, fmt.Errorf("openai translator: no API key (set OPENAI_API_KEY or run `shoplist auth login`)")
		}
		return NewOpenAI(opt.APIKey, opt.BaseURL, opt.Model, opt.Timeout, log), nil
	}
	return nil, fmt.Errorf("unknown translation provider %q", opt.Provider)
}

// Identity returns the text untouched.
type Identity struct{}

func (Identity) Translate(_ context.Context, text, _ string) string { return text }

// skip reports whether a call would be pointless.
func skip(text, lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	return strings.TrimSpace(text) == "" || lang == "" || lang == SourceLang
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
