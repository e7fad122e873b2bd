package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"moreyou/storefront/internal/client"
	"moreyou/storefront/internal/domain"
	"moreyou/storefront/internal/state"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu sync.Mutex

	fetchCalls  int
	createCalls int
	addCalls    int
	updateCalls int

	carts     map[string]*domain.Cart
	createdID string

	fetchErr  error
	createErr error
	addErr    error
	updateErr error

	mutationResult *domain.Cart
	lastCartID     string
	lastAdd        []client.LineInput
	lastUpdate     []client.LineUpdateInput
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		carts:     map[string]*domain.Cart{},
		createdID: "cart-new",
	}
}

func (f *fakeClient) CreateCart(ctx context.Context) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return emptyCart(f.createdID), nil
}

func (f *fakeClient) FetchCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	cart, ok := f.carts[cartID]
	if !ok {
		return nil, client.ErrNotFound
	}
	return cart, nil
}

func (f *fakeClient) AddCartLines(ctx context.Context, cartID string, lines []client.LineInput) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	f.lastCartID = cartID
	f.lastAdd = lines
	if f.addErr != nil {
		return nil, f.addErr
	}
	return f.mutationResult, nil
}

func (f *fakeClient) UpdateCartLines(ctx context.Context, cartID string, lines []client.LineUpdateInput) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastCartID = cartID
	f.lastUpdate = lines
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.mutationResult, nil
}

func (f *fakeClient) CollectionByHandle(ctx context.Context, handle string, first int) (*domain.Collection, error) {
	return nil, client.ErrNotFound
}

func (f *fakeClient) ProductByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	return nil, client.ErrNotFound
}

func (f *fakeClient) Products(ctx context.Context, first int) ([]domain.Product, error) {
	return nil, nil
}

func emptyCart(id string) *domain.Cart {
	return &domain.Cart{
		ID:          id,
		CheckoutURL: "https://shop.example/checkout/" + id,
		Subtotal:    usd("0"),
	}
}

func usd(amount string) domain.Money {
	return domain.Money{Amount: decimal.RequireFromString(amount), CurrencyCode: "USD"}
}

func newTestSynchronizer(t *testing.T, api *fakeClient) (*Synchronizer, *state.MemoryHandleStore) {
	t.Helper()
	handles := state.NewMemoryHandleStore()
	return NewSynchronizer(api, handles, state.NewSnapshotCell()), handles
}

func TestResolveOrCreateFreshProfile(t *testing.T) {
	api := newFakeClient()
	syncer, handles := newTestSynchronizer(t, api)

	cart, err := syncer.ResolveOrCreate(context.Background())
	require.NoError(t, err)

	require.NotNil(t, cart)
	assert.Equal(t, "cart-new", cart.ID)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, 0, api.fetchCalls)

	handle, ok, err := handles.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cart-new", handle)
	assert.Equal(t, StateReady, syncer.State())
}

func TestResolveOrCreateIsIdempotentForValidHandle(t *testing.T) {
	api := newFakeClient()
	api.carts["cart-1"] = emptyCart("cart-1")
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-1"))

	first, err := syncer.ResolveOrCreate(context.Background())
	require.NoError(t, err)
	second, err := syncer.ResolveOrCreate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, api.fetchCalls, "second resolve must reuse the snapshot")
	assert.Equal(t, 0, api.createCalls)
}

func TestResolveOrCreateRecoversFromStaleHandle(t *testing.T) {
	api := newFakeClient()
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-gone"))

	cart, err := syncer.ResolveOrCreate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, api.fetchCalls)
	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, "cart-new", cart.ID)

	handle, ok, err := handles.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cart-new", handle, "new handle replaces the stale one")
}

func TestResolveOrCreateKeepsCartOnTransportFailure(t *testing.T) {
	api := newFakeClient()
	api.fetchErr = &client.TransportError{Err: errors.New("connection refused")}
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-1"))

	_, err := syncer.ResolveOrCreate(context.Background())
	require.Error(t, err)

	assert.Equal(t, 0, api.createCalls, "a transient failure must never abandon a live cart")
	handle, ok, _ := handles.Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, "cart-1", handle)
	assert.Equal(t, StateUnresolved, syncer.State())
}

func TestAddLineSendsMutationAndReplacesSnapshot(t *testing.T) {
	api := newFakeClient()
	api.carts["cart-1"] = emptyCart("cart-1")
	api.mutationResult = &domain.Cart{
		ID:       "cart-1",
		Subtotal: usd("20.00"),
		Lines: []domain.CartLine{{
			ID:       "line-1",
			Quantity: 1,
			Total:    usd("20.00"),
			Merchandise: domain.Merchandise{
				VariantID:    "variant-1",
				ProductTitle: "Hoodie",
			},
		}},
	}
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-1"))

	updated, err := syncer.AddLine(context.Background(), "variant-1", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, api.addCalls)
	assert.Equal(t, "cart-1", api.lastCartID)
	require.Len(t, api.lastAdd, 1)
	assert.Equal(t, "variant-1", api.lastAdd[0].MerchandiseID)
	assert.Equal(t, 1, api.lastAdd[0].Quantity)

	require.Len(t, updated.Lines, 1)
	assert.Same(t, updated, syncer.Snapshot(), "snapshot replaced with the server response")
	assert.Equal(t, StateReady, syncer.State())
}

func TestAddLineResolvesUnresolvedCartFirst(t *testing.T) {
	api := newFakeClient()
	api.mutationResult = emptyCart("cart-new")
	syncer, _ := newTestSynchronizer(t, api)

	_, err := syncer.AddLine(context.Background(), "variant-1", 2)
	require.NoError(t, err)

	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, "cart-new", api.lastCartID)
	assert.Equal(t, 2, api.lastAdd[0].Quantity)
}

func TestAddLineFailureRetainsPriorSnapshot(t *testing.T) {
	api := newFakeClient()
	api.carts["cart-1"] = emptyCart("cart-1")
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-1"))

	before, err := syncer.ResolveOrCreate(context.Background())
	require.NoError(t, err)

	api.addErr = &client.TransportError{Err: errors.New("network unreachable")}
	_, err = syncer.AddLine(context.Background(), "variant-1", 1)
	require.Error(t, err)

	assert.Same(t, before, syncer.Snapshot(), "snapshot unchanged after a failed mutation")
	assert.Equal(t, StateReady, syncer.State())
}

func TestAddLineRejectsNonPositiveQuantity(t *testing.T) {
	api := newFakeClient()
	syncer, _ := newTestSynchronizer(t, api)

	_, err := syncer.AddLine(context.Background(), "variant-1", 0)
	require.ErrorIs(t, err, ErrQuantityFloor)
	assert.Equal(t, 0, api.addCalls)
	assert.Equal(t, 0, api.createCalls, "a rejected quantity must not even resolve the cart")
}

func TestUpdateLineQuantityFloor(t *testing.T) {
	api := newFakeClient()
	syncer, _ := newTestSynchronizer(t, api)

	for _, quantity := range []int{0, -1} {
		_, err := syncer.UpdateLineQuantity(context.Background(), "line-1", quantity)
		require.ErrorIs(t, err, ErrQuantityFloor)
	}
	assert.Equal(t, 0, api.updateCalls)
	assert.Equal(t, 0, api.fetchCalls)
}

func TestUpdateLineQuantityReplacesSnapshot(t *testing.T) {
	api := newFakeClient()
	api.carts["cart-1"] = emptyCart("cart-1")
	api.mutationResult = &domain.Cart{
		ID:       "cart-1",
		Subtotal: usd("40.00"),
		Lines: []domain.CartLine{{
			ID:       "line-1",
			Quantity: 2,
			Total:    usd("40.00"),
		}},
	}
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-1"))

	updated, err := syncer.UpdateLineQuantity(context.Background(), "line-1", 2)
	require.NoError(t, err)

	assert.Equal(t, 1, api.updateCalls)
	require.Len(t, api.lastUpdate, 1)
	assert.Equal(t, "line-1", api.lastUpdate[0].ID)
	assert.Equal(t, 2, api.lastUpdate[0].Quantity)
	assert.Same(t, updated, syncer.Snapshot())
}

func TestUpdateLineQuantityFailureRetainsPriorSnapshot(t *testing.T) {
	api := newFakeClient()
	api.carts["cart-1"] = emptyCart("cart-1")
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-1"))

	before, err := syncer.ResolveOrCreate(context.Background())
	require.NoError(t, err)

	api.updateErr = &client.PlatformError{Messages: []string{"throttled"}}
	_, err = syncer.UpdateLineQuantity(context.Background(), "line-1", 3)
	require.Error(t, err)

	assert.Same(t, before, syncer.Snapshot())
}

func TestCartGoneDuringMutationDropsToUnresolved(t *testing.T) {
	api := newFakeClient()
	api.carts["cart-1"] = emptyCart("cart-1")
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-1"))

	_, err := syncer.ResolveOrCreate(context.Background())
	require.NoError(t, err)

	api.addErr = client.ErrNotFound
	_, err = syncer.AddLine(context.Background(), "variant-1", 1)
	require.Error(t, err)

	assert.Equal(t, StateUnresolved, syncer.State())
}

func TestResolveInitialStateWithoutHandle(t *testing.T) {
	api := newFakeClient()
	syncer, _ := newTestSynchronizer(t, api)

	cart, err := syncer.ResolveInitialState(context.Background())
	require.NoError(t, err)

	assert.Nil(t, cart, "first visit renders empty, no cart is created")
	assert.Equal(t, 0, api.createCalls)
	assert.Equal(t, 0, api.fetchCalls)
}

func TestResolveInitialStateRehydratesSnapshot(t *testing.T) {
	api := newFakeClient()
	api.carts["cart-1"] = emptyCart("cart-1")
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-1"))

	cart, err := syncer.ResolveInitialState(context.Background())
	require.NoError(t, err)

	require.NotNil(t, cart)
	assert.Equal(t, "cart-1", cart.ID)
	assert.Same(t, cart, syncer.Snapshot())
	assert.Equal(t, StateReady, syncer.State())
}

func TestResolveInitialStateStaleHandleStartsEmpty(t *testing.T) {
	api := newFakeClient()
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-gone"))

	cart, err := syncer.ResolveInitialState(context.Background())
	require.NoError(t, err)

	assert.Nil(t, cart)
	assert.Equal(t, 0, api.createCalls, "page load never creates a cart")
}

func TestCheckoutURLResolvesCart(t *testing.T) {
	api := newFakeClient()
	api.carts["cart-1"] = emptyCart("cart-1")
	syncer, handles := newTestSynchronizer(t, api)
	require.NoError(t, handles.Save(context.Background(), "cart-1"))

	url, err := syncer.CheckoutURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/checkout/cart-1", url)
}
