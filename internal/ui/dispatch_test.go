package ui

import (
	"context"
	"errors"
	"testing"

	"moreyou/storefront/internal/cart"
	"moreyou/storefront/internal/client"
	"moreyou/storefront/internal/domain"
	"moreyou/storefront/internal/state"
	"moreyou/storefront/internal/view"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient serves one fixed cart and counts mutation calls.
type stubClient struct {
	cart        *domain.Cart
	addCalls    int
	updateCalls int
	updateErr   error
}

func (s *stubClient) CreateCart(ctx context.Context) (*domain.Cart, error) {
	return s.cart, nil
}

func (s *stubClient) FetchCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	if s.cart == nil || s.cart.ID != cartID {
		return nil, client.ErrNotFound
	}
	return s.cart, nil
}

func (s *stubClient) AddCartLines(ctx context.Context, cartID string, lines []client.LineInput) (*domain.Cart, error) {
	s.addCalls++
	return s.cart, nil
}

func (s *stubClient) UpdateCartLines(ctx context.Context, cartID string, lines []client.LineUpdateInput) (*domain.Cart, error) {
	s.updateCalls++
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.cart, nil
}

func (s *stubClient) CollectionByHandle(ctx context.Context, handle string, first int) (*domain.Collection, error) {
	return nil, client.ErrNotFound
}

func (s *stubClient) ProductByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	return nil, client.ErrNotFound
}

func (s *stubClient) Products(ctx context.Context, first int) ([]domain.Product, error) {
	return nil, nil
}

func testCart() *domain.Cart {
	return &domain.Cart{
		ID:          "cart-1",
		CheckoutURL: "https://shop.example/checkout/cart-1",
		Subtotal:    domain.Money{Amount: decimal.RequireFromString("20.00"), CurrencyCode: "USD"},
		Lines: []domain.CartLine{{
			ID:       "line-1",
			Quantity: 1,
			Total:    domain.Money{Amount: decimal.RequireFromString("20.00"), CurrencyCode: "USD"},
			Merchandise: domain.Merchandise{
				VariantID:    "variant-1",
				Title:        "M",
				ProductTitle: "Hoodie",
			},
		}},
	}
}

func newTestDispatcher(t *testing.T, api client.Client) *Dispatcher {
	t.Helper()
	syncer := cart.NewSynchronizer(api, state.NewMemoryHandleStore(), state.NewSnapshotCell())
	return NewDispatcher(syncer, view.NewProjector())
}

func TestDispatchUnknownIntent(t *testing.T) {
	d := newTestDispatcher(t, &stubClient{cart: testCart()})

	_, err := d.Dispatch(context.Background(), Intent{Kind: IntentKind("drop-tables")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown intent")
}

func TestDispatchAddToCartDefaultsQuantityToOne(t *testing.T) {
	api := &stubClient{cart: testCart()}
	d := newTestDispatcher(t, api)

	outcome, err := d.Dispatch(context.Background(), Intent{
		Kind:      IntentAddToCart,
		VariantID: "variant-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, api.addCalls)
	assert.Equal(t, "1", outcome.Cart.Badge)
	assert.Equal(t, "$20.00", outcome.Cart.SubtotalText)
}

func TestDispatchQuantityDecrementAtFloorIsNoop(t *testing.T) {
	api := &stubClient{cart: testCart()}
	d := newTestDispatcher(t, api)

	outcome, err := d.Dispatch(context.Background(), Intent{
		Kind:            IntentChangeQuantity,
		LineID:          "line-1",
		CurrentQuantity: 1,
		Delta:           -1,
	})
	require.NoError(t, err)

	assert.True(t, outcome.Noop)
	assert.Equal(t, 0, api.updateCalls, "a decrement below 1 never reaches the platform")
}

func TestDispatchQuantityIncrement(t *testing.T) {
	api := &stubClient{cart: testCart()}
	d := newTestDispatcher(t, api)

	outcome, err := d.Dispatch(context.Background(), Intent{
		Kind:            IntentChangeQuantity,
		LineID:          "line-1",
		CurrentQuantity: 1,
		Delta:           1,
	})
	require.NoError(t, err)

	assert.False(t, outcome.Noop)
	assert.Equal(t, 1, api.updateCalls)
}

func TestDispatchQuantityUpdateFailureSurfaces(t *testing.T) {
	api := &stubClient{cart: testCart(), updateErr: &client.TransportError{Err: errors.New("timeout")}}
	d := newTestDispatcher(t, api)

	_, err := d.Dispatch(context.Background(), Intent{
		Kind:            IntentChangeQuantity,
		LineID:          "line-1",
		CurrentQuantity: 1,
		Delta:           1,
	})
	require.Error(t, err)
}

func TestDispatchCheckoutReturnsURL(t *testing.T) {
	d := newTestDispatcher(t, &stubClient{cart: testCart()})

	outcome, err := d.Dispatch(context.Background(), Intent{Kind: IntentCheckout})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/checkout/cart-1", outcome.CheckoutURL)
}

func TestDispatchRefreshCartWithoutHandleIsEmpty(t *testing.T) {
	d := newTestDispatcher(t, &stubClient{cart: testCart()})

	outcome, err := d.Dispatch(context.Background(), Intent{Kind: IntentRefreshCart})
	require.NoError(t, err)
	assert.True(t, outcome.Cart.Empty)
	assert.Equal(t, "0", outcome.Cart.Badge)
}
