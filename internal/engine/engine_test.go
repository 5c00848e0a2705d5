package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/internal/app/repository"
	"github.com/ikkim/shopgenie-backend/internal/app/service"
	"github.com/ikkim/shopgenie-backend/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

type failingRepository struct {
	repository.SnapshotRepository
	mu   sync.Mutex
	fail bool
}

func (r *failingRepository) setFail(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

func (r *failingRepository) Put(ctx context.Context, key string, payload []byte) error {
	r.mu.Lock()
	fail := r.fail
	r.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return r.SnapshotRepository.Put(ctx, key, payload)
}

func setupEngineTest(t *testing.T, repo repository.SnapshotRepository) *Engine {
	t.Helper()
	if repo == nil {
		repo = repository.NewMemorySnapshotRepository()
	}
	e := New(Options{
		Catalog:      catalog.Default(),
		Gateway:      service.NewPersistenceGateway(repo),
		HistoryLimit: service.DefaultHistoryLimit,
	})
	e.Load(context.Background())
	t.Cleanup(func() { e.Close(context.Background()) })
	return e
}

func TestEngine_AddToCartScenario(t *testing.T) {
	e := setupEngineTest(t, nil)
	ctx := context.Background()
	xl := model.SelectedOptions{"Color": "Blue", "Size": "XL"}

	line, err := e.AddToCart(ctx, "3", xl, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, "31.99", line.Price.StringFixed(2))

	line, err = e.AddToCart(ctx, "3", model.SelectedOptions{"Size": "XL", "Color": "Blue"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "31.99", line.Price.StringFixed(2))

	state := e.State()
	require.Len(t, state.Cart, 1)
	assert.Equal(t, "95.97", state.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", state.Totals.Shipping.StringFixed(2))
}

func TestEngine_AddToCartRejectsUnknowns(t *testing.T) {
	e := setupEngineTest(t, nil)
	ctx := context.Background()

	_, err := e.AddToCart(ctx, "404", nil, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = e.AddToCart(ctx, "3", model.SelectedOptions{"Size": "XXXL"}, 1)
	assert.ErrorIs(t, err, ErrInvalidOption)

	assert.Empty(t, e.State().Cart)
}

func TestEngine_MissingLinesAreNoOps(t *testing.T) {
	e := setupEngineTest(t, nil)
	ctx := context.Background()

	assert.NoError(t, e.UpdateQuantity(ctx, "missing", 3))
	assert.NoError(t, e.RemoveFromCart(ctx, "missing"))
	assert.NoError(t, e.RemoveFromCart(ctx, "missing"))
	assert.NoError(t, e.ClearCart(ctx))
}

func TestEngine_PersistsAndReloads(t *testing.T) {
	repo := repository.NewMemorySnapshotRepository()
	ctx := context.Background()

	first := setupEngineTest(t, repo)
	_, err := first.AddToCart(ctx, "3", model.SelectedOptions{"Size": "XL"}, 2)
	require.NoError(t, err)
	_, err = first.ToggleWishlist(ctx, "5")
	require.NoError(t, err)
	_, err = first.ViewProduct(ctx, "2")
	require.NoError(t, err)
	_, err = first.SignIn(ctx, nil)
	require.NoError(t, err)

	second := setupEngineTest(t, repo)
	state := second.State()
	require.Len(t, state.Cart, 1)
	assert.Equal(t, 2, state.Cart[0].Quantity)
	assert.Equal(t, "31.99", state.Cart[0].Price.StringFixed(2))
	assert.Equal(t, "5", state.Wishlist[0].ID)
	assert.Equal(t, "2", state.History[0].ID)
	require.NotNil(t, state.User)
	assert.Equal(t, model.DemoUser, *state.User)
}

func TestEngine_SignOutDeletesSession(t *testing.T) {
	repo := repository.NewMemorySnapshotRepository()
	e := setupEngineTest(t, repo)
	ctx := context.Background()

	_, err := e.SignIn(ctx, &model.UserIdentity{ID: "u9", Name: "Pat"})
	require.NoError(t, err)
	require.NoError(t, e.SignOut(ctx))

	_, err = repo.Get(ctx, string(service.StoreSession))
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
	assert.Nil(t, e.State().User)
}

func TestEngine_UpdateProfile(t *testing.T) {
	e := setupEngineTest(t, nil)
	ctx := context.Background()
	name := "Alex J."

	_, err := e.UpdateProfile(ctx, model.ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, service.ErrNotSignedIn)

	_, err = e.SignIn(ctx, nil)
	require.NoError(t, err)
	user, err := e.UpdateProfile(ctx, model.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, user.Name)
	assert.Equal(t, model.DemoUser.Email, user.Email)
}

func TestEngine_UnsaveProductMissingFromCatalog(t *testing.T) {
	repo := repository.NewMemorySnapshotRepository()
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, "wishlist", []byte(`[{"id":"retired-42","name":"Discontinued Lamp","price":"12"},{"id":"5","name":"Professional Chef Knife","price":"89.95"}]`)))

	e := setupEngineTest(t, repo)
	require.Len(t, e.State().Wishlist, 2)

	saved, err := e.ToggleWishlist(ctx, "retired-42")
	require.NoError(t, err)
	assert.False(t, saved)

	wishlist := e.State().Wishlist
	require.Len(t, wishlist, 1)
	assert.Equal(t, "5", wishlist[0].ID)

	payload, err := repo.Get(ctx, "wishlist")
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "retired-42")

	// Once gone it cannot be saved again.
	_, err = e.ToggleWishlist(ctx, "retired-42")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Len(t, e.State().Wishlist, 1)
}

func TestEngine_CorruptSnapshotsFallBackToDefaults(t *testing.T) {
	repo := repository.NewMemorySnapshotRepository()
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, "cart", []byte(`[{"id":`)))
	require.NoError(t, repo.Put(ctx, "wishlist", []byte(`"not a list"`)))
	require.NoError(t, repo.Put(ctx, "history", []byte(`[{"id":"1","name":"Headphones"}]`)))
	require.NoError(t, repo.Put(ctx, "session", []byte(`null`)))

	e := setupEngineTest(t, repo)
	state := e.State()
	assert.Empty(t, state.Cart)
	assert.Empty(t, state.Wishlist)
	assert.Equal(t, "1", state.History[0].ID)
	assert.Nil(t, state.User)
}

func TestEngine_WriteFailureDoesNotFailOperation(t *testing.T) {
	repo := &failingRepository{SnapshotRepository: repository.NewMemorySnapshotRepository()}
	e := setupEngineTest(t, repo)
	ctx := context.Background()

	repo.setFail(true)
	_, err := e.AddToCart(ctx, "1", nil, 1)
	require.NoError(t, err)
	assert.Len(t, e.State().Cart, 1)
	assert.Equal(t, []service.StoreKey{service.StoreCart}, e.Degraded())

	repo.setFail(false)
	assert.Equal(t, 1, e.RetryPersistence(ctx))
	assert.Empty(t, e.Degraded())

	payload, err := repo.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"cart_item_id":"1"`)
}

// Two engines over one repository do not coordinate: whichever writes a key
// last decides what the next load sees.
func TestEngine_SharedRepositoryIsLastWriteWins(t *testing.T) {
	repo := repository.NewMemorySnapshotRepository()
	ctx := context.Background()
	tabA := setupEngineTest(t, repo)
	tabB := setupEngineTest(t, repo)

	_, err := tabA.AddToCart(ctx, "1", nil, 1)
	require.NoError(t, err)
	_, err = tabB.AddToCart(ctx, "2", nil, 1)
	require.NoError(t, err)

	assert.Equal(t, "1", tabA.State().Cart[0].ID)

	reloaded := setupEngineTest(t, repo)
	cart := reloaded.State().Cart
	require.Len(t, cart, 1)
	assert.Equal(t, "2", cart[0].ID)
}

func TestEngine_ReorderMerges(t *testing.T) {
	e := setupEngineTest(t, nil)
	ctx := context.Background()

	_, err := e.AddToCart(ctx, "3", model.SelectedOptions{"Color": "Blue", "Size": "M"}, 1)
	require.NoError(t, err)

	n, err := e.Reorder(ctx, "ORD-7782")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cart := e.State().Cart
	require.Len(t, cart, 2)
	assert.Equal(t, "3|Color=Blue&Size=M", cart[0].LineID)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, "1", cart[1].LineID)

	_, err = e.Reorder(ctx, "ORD-404")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestEngine_ViewProduct(t *testing.T) {
	e := setupEngineTest(t, nil)
	ctx := context.Background()

	_, err := e.ToggleWishlist(ctx, "3")
	require.NoError(t, err)

	view, err := e.ViewProduct(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, model.SelectedOptions{"Color": "Blue", "Size": "S"}, view.DefaultSelection)
	assert.Equal(t, "29.99", view.EffectivePrice.StringFixed(2))
	assert.True(t, view.Saved)
	assert.Equal(t, "3", e.State().History[0].ID)

	_, err = e.ViewProduct(ctx, "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestEngine_Checkout(t *testing.T) {
	e := setupEngineTest(t, nil)
	ctx := context.Background()

	_, err := e.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = e.AddToCart(ctx, "2", nil, 1)
	require.NoError(t, err)
	receipt, err := e.Checkout(ctx)
	require.NoError(t, err)
	require.Len(t, receipt.Lines, 1)
	assert.Equal(t, "199.50", receipt.Totals.Total.StringFixed(2))
	assert.Empty(t, e.State().Cart)
}

func TestEngine_CheckoutCancelledKeepsCart(t *testing.T) {
	e := New(Options{CheckoutDelay: time.Hour})
	ctx := context.Background()
	_, err := e.AddToCart(ctx, "1", nil, 1)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = e.Checkout(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, e.State().Cart, 1)

	done := make(chan error, 1)
	go func() {
		_, err := e.Checkout(ctx)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	e.Close(ctx)
	assert.ErrorIs(t, <-done, ErrEngineClosed)
}

func TestEngine_Subscribe(t *testing.T) {
	e := setupEngineTest(t, nil)
	ctx := context.Background()

	var events []Event
	unsubscribe := e.Subscribe(func(evt Event) {
		// runs outside the engine lock
		_ = e.State()
		events = append(events, evt)
	})

	_, err := e.AddToCart(ctx, "1", nil, 1)
	require.NoError(t, err)
	require.NoError(t, e.UpdateQuantity(ctx, "missing", 1))
	_, err = e.ToggleWishlist(ctx, "1")
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, service.StoreCart, events[0].Store)
	assert.Len(t, events[0].State.Cart, 1)
	assert.Equal(t, service.StoreWishlist, events[1].Store)

	unsubscribe()
	unsubscribe()
	require.NoError(t, e.ClearCart(ctx))
	assert.Len(t, events, 2)
}

func TestEngine_ClosedRejectsOperations(t *testing.T) {
	e := New(Options{})
	ctx := context.Background()
	e.Close(ctx)
	e.Close(ctx)

	_, err := e.AddToCart(ctx, "1", nil, 1)
	assert.ErrorIs(t, err, ErrEngineClosed)
	_, err = e.SignIn(ctx, nil)
	assert.ErrorIs(t, err, ErrEngineClosed)
	_, err = e.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEngineClosed)
}

func TestEngine_ConcurrentAddsAreSerialized(t *testing.T) {
	e := setupEngineTest(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.AddToCart(ctx, "3", model.SelectedOptions{"Size": "L"}, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart := e.State().Cart
	require.Len(t, cart, 1)
	assert.Equal(t, 50, cart[0].Quantity)
}
