package shoplist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memGateway keeps the last saved snapshot in memory.
type memGateway struct {
	mu      sync.Mutex
	snap    store.Snapshot
	saves   int
	loadErr error
	saveErr error
	cleared bool
}

func (g *memGateway) Load(context.Context) (store.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loadErr != nil {
		return nil, g.loadErr
	}
	out := store.Snapshot{}
	for k, v := range g.snap {
		out[k] = append([]model.Item(nil), v...)
	}
	return out, nil
}

func (g *memGateway) Save(_ context.Context, snap store.Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return g.saveErr
	}
	g.snap = snap
	g.saves++
	return nil
}

func (g *memGateway) Clear(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snap = nil
	g.cleared = true
	return nil
}

func (g *memGateway) saveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}

// upperTranslator "translates" by upper-casing and tagging the language.
type upperTranslator struct {
	calls atomic.Int32
}

func (u *upperTranslator) Translate(_ context.Context, text, lang string) string {
	u.calls.Add(1)
	return strings.ToUpper(text) + "@" + lang
}

func newService(t *testing.T, gw *memGateway) (*Service, *upperTranslator) {
	t.Helper()
	tr := &upperTranslator{}
	s := New(Options{Gateway: gw, Translator: tr, TargetLang: "es", Concurrency: 3})
	require.NoError(t, s.Open(context.Background()))
	return s, tr
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	s, _ := newService(t, gw)

	a, err := s.Add(ctx, "3 bananas")
	require.NoError(t, err)
	assert.Equal(t, "Fruits", a.Category)
	assert.Equal(t, "Bananas", a.Item.Name)
	assert.Equal(t, "BANANAS@es", a.Item.Translation)
	assert.Equal(t, 3.0, a.Item.Quantity)
	assert.Equal(t, "🍎", a.Item.Icon)
	assert.True(t, a.Item.IsNew)

	assert.Equal(t, 1, gw.saveCount())
	require.Len(t, gw.snap["Fruits"], 1)
	assert.Equal(t, a.Item.ID, gw.snap["Fruits"][0].ID)
}

func TestAddEmptyName(t *testing.T) {
	gw := &memGateway{}
	s, tr := newService(t, gw)

	_, err := s.Add(context.Background(), "12")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Zero(t, gw.saveCount())
	assert.Zero(t, tr.calls.Load(), "no translation for rejected input")
}

func TestOpenLoadError(t *testing.T) {
	gw := &memGateway{loadErr: store.ErrCorrupt}
	s := New(Options{Gateway: gw})
	assert.ErrorIs(t, s.Open(context.Background()), store.ErrCorrupt)
}

func TestMutationsSave(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	s, _ := newService(t, gw)

	a, err := s.Add(ctx, "milk")
	require.NoError(t, err)
	ref := Ref{Category: a.Category, ID: a.Item.ID}

	v, err := s.Toggle(ctx, ref)
	require.NoError(t, err)
	assert.True(t, v)

	q, err := s.SetQuantityText(ctx, ref, "zero")
	require.NoError(t, err)
	assert.Equal(t, 1.0, q)

	q, err = s.SetQuantity(ctx, ref, 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, q)

	require.NoError(t, s.RenameCategory(ctx, "Dairy", "Fridge"))
	ref.Category = "Fridge"

	require.NoError(t, s.Move(ctx, ref, "Cold", 0))
	ref.Category = "Cold"

	require.NoError(t, s.Delete(ctx, ref))
	assert.Zero(t, s.Len())
	assert.Equal(t, 7, gw.saveCount())
}

func TestNotFoundDoesNotSave(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	s, _ := newService(t, gw)

	_, err := s.Toggle(ctx, Ref{Category: "Fruits", ID: "nope"})
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(s.Delete(ctx, Ref{Category: "Fruits", ID: "nope"})))
	assert.True(t, IsNotFound(s.RenameCategory(ctx, "Nope", "Other")))
	assert.Zero(t, gw.saveCount())
}

func TestSaveErrorSurfaces(t *testing.T) {
	gw := &memGateway{saveErr: errors.New("disk full")}
	s, _ := newService(t, gw)
	_, err := s.Add(context.Background(), "milk")
	assert.ErrorContains(t, err, "disk full")
}

func TestFailedSaveRollsBack(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{snap: store.Snapshot{
		"Dairy": {{ID: "d1", Name: "Milk", Translation: "MILK@es", Quantity: 1}},
	}}
	s, _ := newService(t, gw)
	ref := Ref{Category: "Dairy", ID: "d1"}
	want := s.Snapshot()

	gw.mu.Lock()
	gw.saveErr = errors.New("disk full")
	gw.mu.Unlock()

	_, err := s.Add(ctx, "apples")
	assert.ErrorContains(t, err, "disk full")
	_, err = s.Toggle(ctx, ref)
	assert.Error(t, err)
	_, err = s.SetQuantity(ctx, ref, 5)
	assert.Error(t, err)
	assert.Error(t, s.RenameCategory(ctx, "Dairy", "Fridge"))
	assert.Error(t, s.ClearItems(ctx))
	assert.Error(t, s.UpdateTranslations(ctx, "fr"))

	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("state changed after failed saves (-want +got):\n%s", diff)
	}
	assert.Equal(t, "es", s.TargetLang())

	gw.mu.Lock()
	gw.saveErr = nil
	gw.mu.Unlock()
	_, err = s.Toggle(ctx, ref)
	require.NoError(t, err)
	assert.True(t, gw.snap["Dairy"][0].Purchased)
}

func TestRenameItemRecategorizesAndRetranslates(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	s, _ := newService(t, gw)

	a, err := s.Add(ctx, "apples")
	require.NoError(t, err)

	moved, err := s.RenameItem(ctx, Ref{Category: a.Category, ID: a.Item.ID}, "Cheddar Cheese")
	require.NoError(t, err)
	assert.Equal(t, "Dairy", moved)

	it, ok := s.Find(Ref{Category: "Dairy", ID: a.Item.ID})
	require.True(t, ok)
	assert.Equal(t, "Cheddar Cheese", it.Name)
	assert.Equal(t, "CHEDDAR CHEESE@es", it.Translation)
	_, ok = s.Find(Ref{Category: "Fruits", ID: a.Item.ID})
	assert.False(t, ok)
}

// gatedTranslator blocks until released so a test can change the list while
// a translation is in flight.
type gatedTranslator struct {
	started chan string
	release chan struct{}
}

func (g *gatedTranslator) Translate(_ context.Context, text, lang string) string {
	g.started <- text
	<-g.release
	return text + "@" + lang
}

func TestRetranslateDropsStaleResults(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{snap: store.Snapshot{
		"Fruits": {{ID: "1", Name: "Apple", Translation: "Apple", Quantity: 1}},
		"Dairy":  {{ID: "2", Name: "Milk", Translation: "Milk", Quantity: 1}},
	}}
	tr := &gatedTranslator{started: make(chan string, 1), release: make(chan struct{})}
	s := New(Options{Gateway: gw, Translator: tr, TargetLang: "fr"})
	require.NoError(t, s.Open(ctx))

	// deleted while in flight
	done := make(chan error, 1)
	go func() { done <- s.Retranslate(ctx, Ref{Category: "Fruits", ID: "1"}) }()
	<-tr.started
	require.NoError(t, s.Delete(ctx, Ref{Category: "Fruits", ID: "1"}))
	close(tr.release)
	assert.True(t, IsNotFound(<-done))

	// renamed while in flight
	tr.release = make(chan struct{})
	go func() { done <- s.Retranslate(ctx, Ref{Category: "Dairy", ID: "2"}) }()
	<-tr.started
	s.mu.Lock()
	_, err := s.store.RenameItem("Dairy", "2", "Oat Milk")
	s.mu.Unlock()
	require.NoError(t, err)
	close(tr.release)
	assert.ErrorIs(t, <-done, store.ErrStale)

	it, ok := s.Find(Ref{Category: "Dairy", ID: "2"})
	require.True(t, ok)
	assert.Equal(t, "Milk", it.Translation, "stale result not applied")
}

func TestUpdateTranslations(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{snap: store.Snapshot{
		"Fruits": {{ID: "1", Name: "Apple", Quantity: 1}, {ID: "2", Name: "Pear", Quantity: 1}},
		"Dairy":  {{ID: "3", Name: "Milk", Quantity: 1}},
	}}
	s, tr := newService(t, gw)

	require.NoError(t, s.UpdateTranslations(ctx, "de"))
	assert.Equal(t, "de", s.TargetLang())
	assert.EqualValues(t, 3, tr.calls.Load())
	assert.Equal(t, 1, gw.saveCount(), "one save for the whole batch")

	snap := s.Snapshot()
	assert.Equal(t, "APPLE@de", snap["Fruits"][0].Translation)
	assert.Equal(t, "PEAR@de", snap["Fruits"][1].Translation)
	assert.Equal(t, "MILK@de", snap["Dairy"][0].Translation)

	a, err := s.Add(ctx, "kiwi")
	require.NoError(t, err)
	assert.Equal(t, "KIWI@de", a.Item.Translation, "new language sticks")
}

func TestUpdateTranslationsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gw := &memGateway{snap: store.Snapshot{"Fruits": {{ID: "1", Name: "Apple", Quantity: 1}}}}
	s, _ := newService(t, gw)

	assert.ErrorIs(t, s.UpdateTranslations(ctx, "de"), context.Canceled)
	assert.Zero(t, gw.saveCount())
}

func TestResolveRenderingOrder(t *testing.T) {
	gw := &memGateway{snap: store.Snapshot{
		"Pantry": {{ID: "p1", Name: "Rice", Quantity: 1}},
		"Dairy":  {{ID: "d1", Name: "Milk", Quantity: 1}, {ID: "d2", Name: "Butter", Quantity: 1}},
	}}
	s, _ := newService(t, gw)

	ref, err := s.Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, Ref{Category: "Dairy", ID: "d1"}, ref)

	ref, err = s.Resolve(3)
	require.NoError(t, err)
	assert.Equal(t, Ref{Category: "Pantry", ID: "p1"}, ref)

	_, err = s.Resolve(0)
	assert.Error(t, err)
	_, err = s.Resolve(4)
	assert.Error(t, err)
}

func TestRestoreAfterDelete(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{snap: store.Snapshot{
		"Dairy": {{ID: "d1", Name: "Milk", Quantity: 1}, {ID: "d2", Name: "Butter", Quantity: 1}},
	}}
	s, _ := newService(t, gw)

	it, ok := s.Find(Ref{Category: "Dairy", ID: "d1"})
	require.True(t, ok)
	require.NoError(t, s.Delete(ctx, Ref{Category: "Dairy", ID: "d1"}))
	require.NoError(t, s.Restore(ctx, "Dairy", 0, it))

	assert.Equal(t, []Ref{{"Dairy", "d1"}, {"Dairy", "d2"}}, s.Rows())
}

func TestClearAndReset(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{snap: store.Snapshot{"Dairy": {{ID: "d1", Name: "Milk", Quantity: 1}}}}
	s, _ := newService(t, gw)

	require.NoError(t, s.ClearItems(ctx))
	assert.Zero(t, s.Len())
	assert.NotNil(t, gw.snap)
	assert.Empty(t, gw.snap)

	require.NoError(t, s.Reset(ctx))
	assert.True(t, gw.cleared)
}

func TestPreview(t *testing.T) {
	s := New(Options{Gateway: &memGateway{}})
	p, m := s.Preview("two applesauce")
	assert.Equal(t, "Applesauce", p.ItemName)
	assert.Equal(t, 2.0, p.Quantity)
	assert.Equal(t, "Fruits", m.Category)
}

func TestMarkSeen(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t, &memGateway{})
	a, err := s.Add(ctx, "milk")
	require.NoError(t, err)

	s.MarkSeen(a.Item.ID)
	it, _ := s.Find(Ref{Category: a.Category, ID: a.Item.ID})
	assert.False(t, it.IsNew)
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	s, _ := newService(t, gw)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.Add(ctx, "apples")
			if !assert.NoError(t, err) {
				return
			}
			_, err = s.Toggle(ctx, Ref{Category: a.Category, ID: a.Item.ID})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, s.Len())
	assert.Equal(t, 40, gw.saveCount())
}
