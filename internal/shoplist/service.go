// Package shoplist is the application layer: it owns the list, runs every
// user action against it and persists the whole list after each change.
//
// Translation is the only slow step. It runs without holding the lock, and
// its result is re-resolved by item ID when it comes back: if the item was
// deleted, moved or renamed meanwhile, the result is dropped.
package shoplist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/shoplist/internal/category"
	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/parse"
	"github.com/idilsaglam/shoplist/internal/store"
)

// ErrEmptyName is returned by Add when the input has no item name left after
// parsing (for example "3" or "2 kg").
var ErrEmptyName = store.ErrEmptyName

// Gateway persists the whole list.
type Gateway interface {
	Load(ctx context.Context) (store.Snapshot, error)
	Save(ctx context.Context, snap store.Snapshot) error
	Clear(ctx context.Context) error
}

// Translator turns an item name into the target language. It must return
// the input unchanged when it cannot translate.
type Translator interface {
	Translate(ctx context.Context, text, lang string) string
}

// Categorizer is the keyword lookup used for new and renamed items.
type Categorizer interface {
	Categorize(name string) category.Match
}

type Options struct {
	Gateway     Gateway
	Translator  Translator
	Categorizer Categorizer
	TargetLang  string
	Concurrency int
	Logger      *zap.Logger
}

type Service struct {
	mu    sync.Mutex
	store *store.Store
	lang  string

	gw          Gateway
	tr          Translator
	cat         Categorizer
	concurrency int
	log         *zap.Logger
}

// Added describes the outcome of Add.
type Added struct {
	Category string
	Item     model.Item
}

// Ref addresses one item.
type Ref struct {
	Category string
	ID       string
}

func New(opt Options) *Service {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Categorizer == nil {
		opt.Categorizer = category.Default()
	}
	if opt.Concurrency < 1 {
		opt.Concurrency = 1
	}
	return &Service{
		store:       store.New(opt.Categorizer),
		lang:        opt.TargetLang,
		gw:          opt.Gateway,
		tr:          opt.Translator,
		cat:         opt.Categorizer,
		concurrency: opt.Concurrency,
		log:         opt.Logger,
	}
}

// Open loads the persisted list, replacing whatever is in memory.
func (s *Service) Open(ctx context.Context) error {
	snap, err := s.gw.Load(ctx)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Replace(snap)
	s.log.Debug("list loaded", zap.Int("items", s.store.Len()))
	return nil
}

// Reload is Open for an already running session, e.g. after the data file
// changed on disk.
func (s *Service) Reload(ctx context.Context) error { return s.Open(ctx) }

// TargetLang is the current translation language.
func (s *Service) TargetLang() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Snapshot returns a copy of the current list.
func (s *Service) Snapshot() store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Len counts all items.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Rows lists every item in rendering order: categories sorted by name, items
// in stored order.
func (s *Service) Rows() []Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Ref
	for _, c := range s.store.Categories() {
		for _, it := range s.store.Items(c) {
			out = append(out, Ref{Category: c, ID: it.ID})
		}
	}
	return out
}

// Resolve maps a 1-based position in rendering order to an item.
func (s *Service) Resolve(n int) (Ref, error) {
	rows := s.Rows()
	if n < 1 || n > len(rows) {
		return Ref{}, fmt.Errorf("index out of range: have %d, got %d", len(rows), n)
	}
	return rows[n-1], nil
}

// Find returns one item.
func (s *Service) Find(ref Ref) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Find(ref.Category, ref.ID)
}

// Preview parses and categorizes raw input without touching the list.
func (s *Service) Preview(raw string) (parse.Result, category.Match) {
	p := parse.Parse(raw)
	return p, s.cat.Categorize(p.ItemName)
}

// Add parses raw input, translates and categorizes the name and appends the
// new item to its category.
func (s *Service) Add(ctx context.Context, raw string) (Added, error) {
	p := parse.Parse(raw)
	if strings.TrimSpace(p.ItemName) == "" {
		return Added{}, ErrEmptyName
	}
	translation := s.translate(ctx, p.ItemName, s.TargetLang())
	m := s.cat.Categorize(p.ItemName)
	it := model.NewItem(p.ItemName, translation, m.Icon, p.Quantity)

	err := s.mutate(ctx, "add", func(st *store.Store) error {
		return st.Add(m.Category, it)
	}, zap.String("category", m.Category), zap.String("name", it.Name))
	if err != nil {
		return Added{}, err
	}
	return Added{Category: m.Category, Item: it}, nil
}

func (s *Service) Delete(ctx context.Context, ref Ref) error {
	return s.mutate(ctx, "delete", func(st *store.Store) error {
		return st.Delete(ref.Category, ref.ID)
	}, refFields(ref)...)
}

// Restore puts a deleted item back at its old position.
func (s *Service) Restore(ctx context.Context, category string, index int, it model.Item) error {
	return s.mutate(ctx, "restore", func(st *store.Store) error {
		return st.Insert(category, index, it)
	}, zap.String("category", category), zap.String("id", it.ID))
}

// Toggle flips the purchased flag and returns the new value.
func (s *Service) Toggle(ctx context.Context, ref Ref) (bool, error) {
	var v bool
	err := s.mutate(ctx, "toggle", func(st *store.Store) (err error) {
		v, err = st.TogglePurchased(ref.Category, ref.ID)
		return err
	}, refFields(ref)...)
	return v, err
}

// SetQuantity stores max(1, q).
func (s *Service) SetQuantity(ctx context.Context, ref Ref, q float64) (float64, error) {
	var v float64
	err := s.mutate(ctx, "quantity", func(st *store.Store) (err error) {
		v, err = st.SetQuantity(ref.Category, ref.ID, q)
		return err
	}, refFields(ref)...)
	return v, err
}

// SetQuantityText is SetQuantity for raw input; non-numbers count as 1.
func (s *Service) SetQuantityText(ctx context.Context, ref Ref, raw string) (float64, error) {
	var v float64
	err := s.mutate(ctx, "quantity", func(st *store.Store) (err error) {
		v, err = st.SetQuantityText(ref.Category, ref.ID, raw)
		return err
	}, refFields(ref)...)
	return v, err
}

// RenameItem renames and recategorizes the item, then retranslates it. The
// returned category is where the item now lives.
func (s *Service) RenameItem(ctx context.Context, ref Ref, newName string) (string, error) {
	var moved string
	err := s.mutate(ctx, "rename", func(st *store.Store) (err error) {
		moved, err = st.RenameItem(ref.Category, ref.ID, newName)
		return err
	}, refFields(ref)...)
	if err != nil {
		return ref.Category, err
	}
	if err := s.Retranslate(ctx, Ref{Category: moved, ID: ref.ID}); err != nil {
		s.log.Debug("retranslation dropped", zap.String("id", ref.ID), zap.Error(err))
	}
	return moved, nil
}

// Retranslate refreshes one item's translation. The result is applied only
// if the item is still in ref.Category under the same name.
func (s *Service) Retranslate(ctx context.Context, ref Ref) error {
	s.mu.Lock()
	it, ok := s.store.Find(ref.Category, ref.ID)
	lang := s.lang
	s.mu.Unlock()
	if !ok {
		return store.ErrItemNotFound
	}

	out := s.translate(ctx, it.Name, lang)

	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.store.Snapshot()
	if err := s.store.SetTranslation(ref.Category, ref.ID, it.Name, out); err != nil {
		s.log.Debug("translation discarded", append(refFields(ref), zap.Error(err))...)
		return err
	}
	return s.save(ctx, before)
}

// UpdateTranslations switches the target language and retranslates every
// item concurrently. Items changed while their request was in flight keep
// their current translation.
func (s *Service) UpdateTranslations(ctx context.Context, lang string) error {
	type job struct {
		ref  Ref
		name string
		out  string
	}

	s.mu.Lock()
	prevLang := s.lang
	s.lang = lang
	var jobs []*job
	for _, c := range s.store.Categories() {
		for _, it := range s.store.Items(c) {
			jobs = append(jobs, &job{ref: Ref{Category: c, ID: it.ID}, name: it.Name})
		}
	}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			j.out = s.translate(gctx, j.name, lang)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.store.Snapshot()
	applied := 0
	for _, j := range jobs {
		if err := s.store.SetTranslation(j.ref.Category, j.ref.ID, j.name, j.out); err != nil {
			s.log.Debug("translation discarded", zap.String("id", j.ref.ID), zap.Error(err))
			continue
		}
		applied++
	}
	s.log.Info("translations updated", zap.String("lang", lang),
		zap.Int("applied", applied), zap.Int("requested", len(jobs)))
	if err := s.save(ctx, before); err != nil {
		s.lang = prevLang
		return err
	}
	return nil
}

// RenameCategory renames a category, merging into newKey if it exists.
func (s *Service) RenameCategory(ctx context.Context, oldKey, newKey string) error {
	return s.mutate(ctx, "rename category", func(st *store.Store) error {
		return st.RenameCategory(oldKey, newKey)
	}, zap.String("from", oldKey), zap.String("to", newKey))
}

// Move places the item at index (0-based) in target.
func (s *Service) Move(ctx context.Context, ref Ref, target string, index int) error {
	return s.mutate(ctx, "move", func(st *store.Store) error {
		return st.MoveItem(ref.ID, ref.Category, target, index)
	}, append(refFields(ref), zap.String("to", target), zap.Int("index", index))...)
}

// MarkSeen clears the transient new-item highlight. Nothing is saved: the
// flag is never persisted.
func (s *Service) MarkSeen(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.MarkSeen(ids...)
}

// ClearItems empties the list and saves the empty list.
func (s *Service) ClearItems(ctx context.Context) error {
	return s.mutate(ctx, "clear", func(st *store.Store) error {
		st.Clear()
		return nil
	})
}

// Reset wipes everything the gateway holds and empties the list.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gw.Clear(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.store.Clear()
	s.log.Info("persisted state wiped")
	return nil
}

// mutate runs fn under the lock and saves on success. Unknown items and
// categories are logged and returned without saving. A failed save undoes fn
// so memory keeps matching what is on disk.
func (s *Service) mutate(ctx context.Context, op string, fn func(*store.Store) error, fields ...zap.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Snapshot()
	if err := fn(s.store); err != nil {
		if isNotFound(err) {
			s.log.Warn(op+": skipped", append(fields, zap.Error(err))...)
		}
		return err
	}
	s.log.Debug(op, fields...)
	return s.save(ctx, before)
}

// save writes the whole list. On failure the store is put back to before.
// Callers hold s.mu.
func (s *Service) save(ctx context.Context, before store.Snapshot) error {
	if err := s.gw.Save(ctx, s.store.Snapshot()); err != nil {
		s.store.Replace(before)
		s.log.Error("save failed, change rolled back", zap.Error(err))
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func (s *Service) translate(ctx context.Context, text, lang string) string {
	if s.tr == nil {
		return text
	}
	return s.tr.Translate(ctx, text, lang)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrItemNotFound) || errors.Is(err, store.ErrCategoryNotFound)
}

// IsNotFound reports whether err means the addressed item or category does
// not exist. Such errors leave the list untouched.
func IsNotFound(err error) bool { return isNotFound(err) }

func refFields(ref Ref) []zap.Field {
	return []zap.Field{zap.String("category", ref.Category), zap.String("id", ref.ID)}
}
