// Package store holds the in-memory shopping list: a mapping from category
// name to an ordered list of items.
//
// Invariants kept by every method:
//   - a category key is present only while its list is non-empty;
//   - an item ID appears at most once across the whole store.
//
// A Store is not safe for concurrent use; callers serialize access.
package store

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/idilsaglam/shoplist/internal/category"
	"github.com/idilsaglam/shoplist/internal/model"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrDuplicateID      = errors.New("item id already in list")
	ErrEmptyName        = errors.New("empty name")
	ErrStale            = errors.New("item changed since request")
	ErrCorrupt          = errors.New("stored list is corrupt")
)

// Snapshot is the persisted shape of the list.
type Snapshot map[string][]model.Item

// Categorizer picks the category for an item name.
type Categorizer interface {
	Categorize(name string) category.Match
}

type Store struct {
	lists map[string][]model.Item
	cat   Categorizer
}

func New(c Categorizer) *Store {
	return &Store{lists: make(map[string][]model.Item), cat: c}
}

// FromSnapshot rebuilds a store from persisted state. Empty categories are
// dropped, quantities are clamped and repeated IDs after the first are
// discarded so the invariants hold even for hand-edited data.
func FromSnapshot(c Categorizer, snap Snapshot) *Store {
	s := New(c)
	s.Replace(snap)
	return s
}

// Replace swaps the whole content for snap, normalizing it as FromSnapshot does.
func (s *Store) Replace(snap Snapshot) {
	s.lists = make(map[string][]model.Item, len(snap))
	seen := make(map[string]bool)
	for _, name := range sortedKeys(snap) {
		for _, it := range snap[name] {
			if it.ID == "" || seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			it.Quantity = model.ClampQuantity(it.Quantity)
			s.lists[name] = append(s.lists[name], it)
		}
	}
}

// Snapshot returns a deep copy safe to hand to a gateway or a renderer.
func (s *Store) Snapshot() Snapshot {
	out := make(Snapshot, len(s.lists))
	for k, v := range s.lists {
		out[k] = slices.Clone(v)
	}
	return out
}

// Categories returns the category names sorted alphabetically, which is the
// order lists are rendered in.
func (s *Store) Categories() []string {
	return sortedKeys(s.lists)
}

// Items returns a copy of one category's list.
func (s *Store) Items(category string) []model.Item {
	return slices.Clone(s.lists[category])
}

// Len counts items across all categories.
func (s *Store) Len() int {
	n := 0
	for _, v := range s.lists {
		n += len(v)
	}
	return n
}

func (s *Store) Find(category, id string) (model.Item, bool) {
	i := s.index(category, id)
	if i < 0 {
		return model.Item{}, false
	}
	return s.lists[category][i], true
}

// Locate finds an item by ID in any category.
func (s *Store) Locate(id string) (string, model.Item, bool) {
	for k, v := range s.lists {
		for _, it := range v {
			if it.ID == id {
				return k, it, true
			}
		}
	}
	return "", model.Item{}, false
}

// Add appends it to category, creating the category if needed.
func (s *Store) Add(category string, it model.Item) error {
	return s.Insert(category, len(s.lists[category]), it)
}

// Insert places it at index in category. The index is clamped to the list.
func (s *Store) Insert(category string, index int, it model.Item) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return ErrEmptyName
	}
	if it.ID == "" {
		it.ID = model.NewID()
	}
	if _, _, dup := s.Locate(it.ID); dup {
		return ErrDuplicateID
	}
	it.Quantity = model.ClampQuantity(it.Quantity)
	s.insert(category, index, it)
	return nil
}

func (s *Store) Delete(category, id string) error {
	i, err := s.lookup(category, id)
	if err != nil {
		return err
	}
	s.removeAt(category, i)
	return nil
}

// TogglePurchased flips the purchased flag and returns the new value.
func (s *Store) TogglePurchased(category, id string) (bool, error) {
	i, err := s.lookup(category, id)
	if err != nil {
		return false, err
	}
	it := &s.lists[category][i]
	it.Purchased = !it.Purchased
	return it.Purchased, nil
}

// SetQuantity stores max(1, q) and returns the stored value.
func (s *Store) SetQuantity(category, id string, q float64) (float64, error) {
	i, err := s.lookup(category, id)
	if err != nil {
		return 0, err
	}
	q = model.ClampQuantity(q)
	s.lists[category][i].Quantity = q
	return q, nil
}

// SetQuantityText is SetQuantity for raw user input; anything that is not a
// number counts as 1.
func (s *Store) SetQuantityText(category, id, raw string) (float64, error) {
	q, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		q = 1
	}
	return s.SetQuantity(category, id, q)
}

// RenameItem sets a new name and recategorizes the item. When the name now
// belongs to another category the item moves to the end of that category.
// The returned string is the category the item ends up in.
func (s *Store) RenameItem(category, id, newName string) (string, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return category, ErrEmptyName
	}
	i, err := s.lookup(category, id)
	if err != nil {
		return category, err
	}
	it := s.lists[category][i]
	it.Name = newName

	m := s.cat.Categorize(newName)
	it.Icon = m.Icon
	if m.Category == category {
		s.lists[category][i] = it
		return category, nil
	}
	s.removeAt(category, i)
	s.insert(m.Category, len(s.lists[m.Category]), it)
	return m.Category, nil
}

// RenameCategory moves every item of oldKey under newKey. When newKey already
// exists the old items are appended after the existing ones.
func (s *Store) RenameCategory(oldKey, newKey string) error {
	newKey = strings.TrimSpace(newKey)
	if newKey == "" {
		return ErrEmptyName
	}
	if oldKey == newKey {
		return nil
	}
	items, ok := s.lists[oldKey]
	if !ok {
		return ErrCategoryNotFound
	}
	s.lists[newKey] = append(s.lists[newKey], items...)
	delete(s.lists, oldKey)
	return nil
}

// MoveItem removes the item from source and inserts it into target at index.
// Within one category the index refers to the list after the removal.
func (s *Store) MoveItem(id, source, target string, index int) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return ErrEmptyName
	}
	i, err := s.lookup(source, id)
	if err != nil {
		return err
	}
	it := s.lists[source][i]
	s.removeAt(source, i)
	s.insert(target, index, it)
	return nil
}

// SetTranslation stores a translation that was requested for sourceName. It
// is discarded with ErrItemNotFound when the item left the category, and with
// ErrStale when the item was renamed in the meantime.
func (s *Store) SetTranslation(category, id, sourceName, translation string) error {
	i, err := s.lookup(category, id)
	if err != nil {
		return err
	}
	it := &s.lists[category][i]
	if it.Name != sourceName {
		return ErrStale
	}
	it.Translation = translation
	return nil
}

// MarkSeen clears the transient IsNew flag.
func (s *Store) MarkSeen(ids ...string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, v := range s.lists {
		for i := range v {
			if want[v[i].ID] {
				v[i].IsNew = false
			}
		}
	}
}

// Clear removes every item.
func (s *Store) Clear() {
	s.lists = make(map[string][]model.Item)
}

func (s *Store) lookup(category, id string) (int, error) {
	if _, ok := s.lists[category]; !ok {
		return -1, ErrCategoryNotFound
	}
	i := s.index(category, id)
	if i < 0 {
		return -1, ErrItemNotFound
	}
	return i, nil
}

func (s *Store) index(category, id string) int {
	return slices.IndexFunc(s.lists[category], func(it model.Item) bool { return it.ID == id })
}

func (s *Store) removeAt(category string, i int) {
	v := slices.Delete(s.lists[category], i, i+1)
	if len(v) == 0 {
		delete(s.lists, category)
		return
	}
	s.lists[category] = v
}

func (s *Store) insert(category string, index int, it model.Item) {
	v := s.lists[category]
	index = max(0, min(index, len(v)))
	s.lists[category] = slices.Insert(v, index, it)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
