package ui

import (
	"context"
	"fmt"

	"moreyou/storefront/internal/cart"
	"moreyou/storefront/internal/view"

	log "github.com/sirupsen/logrus"
)

// IntentKind names a user affordance. The values double as the data-attribute
// roles the page markup is tagged with.
type IntentKind string

const (
	IntentAddToCart      IntentKind = "add-to-cart"
	IntentChangeQuantity IntentKind = "qty-change"
	IntentCheckout       IntentKind = "checkout"
	IntentRefreshCart    IntentKind = "cart-refresh"
)

// Intent is one user action to apply to the cart.
type Intent struct {
	Kind IntentKind

	// add-to-cart
	VariantID string
	Quantity  int // defaults to 1

	// qty-change
	LineID          string
	CurrentQuantity int
	Delta           int
}

// Outcome carries the re-projected cart so the surface can re-render. Noop
// marks intents that were absorbed client-side without a network call, such
// as a decrement that would cross the quantity floor.
type Outcome struct {
	Cart        view.CartView
	CheckoutURL string
	Noop        bool
}

type handlerFunc func(ctx context.Context, in Intent) (Outcome, error)

// Dispatcher maps intents to synchronizer operations through an explicit
// command table, replacing ad-hoc per-control event wiring.
type Dispatcher struct {
	cart      *cart.Synchronizer
	projector *view.Projector
	handlers  map[IntentKind]handlerFunc
}

func NewDispatcher(sync *cart.Synchronizer, projector *view.Projector) *Dispatcher {
	d := &Dispatcher{
		cart:      sync,
		projector: projector,
	}
	d.handlers = map[IntentKind]handlerFunc{
		IntentAddToCart:      d.addToCart,
		IntentChangeQuantity: d.changeQuantity,
		IntentCheckout:       d.checkout,
		IntentRefreshCart:    d.refreshCart,
	}
	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, in Intent) (Outcome, error) {
	handler, ok := d.handlers[in.Kind]
	if !ok {
		return Outcome{}, fmt.Errorf("unknown intent %q", in.Kind)
	}
	return handler(ctx, in)
}

func (d *Dispatcher) addToCart(ctx context.Context, in Intent) (Outcome, error) {
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}

	updated, err := d.cart.AddLine(ctx, in.VariantID, quantity)
	if err != nil {
		log.Errorf("Add to cart failed: %v", err)
		return Outcome{}, err
	}
	return Outcome{Cart: d.projector.ProjectCart(updated)}, nil
}

func (d *Dispatcher) changeQuantity(ctx context.Context, in Intent) (Outcome, error) {
	target := in.CurrentQuantity + in.Delta
	if target < 1 {
		// Blocked client-side: a decrement at quantity 1 never reaches the
		// platform. The current snapshot is re-projected unchanged.
		return Outcome{Cart: d.projector.ProjectCart(d.cart.Snapshot()), Noop: true}, nil
	}

	updated, err := d.cart.UpdateLineQuantity(ctx, in.LineID, target)
	if err != nil {
		log.Errorf("Quantity update failed: %v", err)
		return Outcome{}, err
	}
	return Outcome{Cart: d.projector.ProjectCart(updated)}, nil
}

func (d *Dispatcher) refreshCart(ctx context.Context, in Intent) (Outcome, error) {
	resolved, err := d.cart.ResolveInitialState(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Cart: d.projector.ProjectCart(resolved)}, nil
}

func (d *Dispatcher) checkout(ctx context.Context, in Intent) (Outcome, error) {
	url, err := d.cart.CheckoutURL(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Cart:        d.projector.ProjectCart(d.cart.Snapshot()),
		CheckoutURL: url,
	}, nil
}
