package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"moreyou/storefront/internal/client"
	"moreyou/storefront/internal/domain"
	"moreyou/storefront/internal/state"

	log "github.com/sirupsen/logrus"
)

// ErrQuantityFloor rejects any operation that would send a quantity below 1
// to the platform. Decrements that would cross the floor are blocked before
// a network call is issued.
var ErrQuantityFloor = errors.New("line quantity must be at least 1")

// State of the one logical cart this synchronizer owns.
type State int32

const (
	StateUnresolved State = iota
	StateResolving
	StateReady
	StateMutating
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateReady:
		return "ready"
	case StateMutating:
		return "mutating"
	default:
		return "unknown"
	}
}

// Synchronizer keeps the local cart handle and snapshot consistent with the
// remote source of truth. All operations are serialized through one mutex, so
// two triggers firing in quick succession can no longer race on the shared
// snapshot; the later one simply waits and operates on the fresher cart.
type Synchronizer struct {
	client   client.Client
	handles  state.HandleStore
	snapshot *state.SnapshotCell

	mu sync.Mutex
	st atomic.Int32
}

func NewSynchronizer(apiClient client.Client, handles state.HandleStore, snapshot *state.SnapshotCell) *Synchronizer {
	return &Synchronizer{
		client:   apiClient,
		handles:  handles,
		snapshot: snapshot,
	}
}

// State reports the current lifecycle state. Safe to call concurrently with
// in-flight operations.
func (s *Synchronizer) State() State {
	return State(s.st.Load())
}

func (s *Synchronizer) setState(st State) {
	s.st.Store(int32(st))
}

// Snapshot returns the last successful cart snapshot, or nil before the first
// resolve.
func (s *Synchronizer) Snapshot() *domain.Cart {
	return s.snapshot.Get()
}

// ResolveInitialState rehydrates the snapshot at page load: a persisted
// handle is verified against the platform, but no cart is created. A missing
// or stale handle leaves the cart Unresolved and returns nil, which renders
// as the empty state.
func (s *Synchronizer) ResolveInitialState(ctx context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() == StateReady {
		if cached := s.snapshot.Get(); cached != nil {
			return cached, nil
		}
	}

	s.setState(StateResolving)

	handle, ok, err := s.handles.Load(ctx)
	if err != nil {
		s.setState(StateUnresolved)
		return nil, fmt.Errorf("failed to load cart handle: %w", err)
	}
	if !ok {
		s.setState(StateUnresolved)
		return nil, nil
	}

	fetched, err := s.client.FetchCart(ctx, handle)
	switch {
	case err == nil:
		s.snapshot.Set(fetched)
		s.setState(StateReady)
		return fetched, nil
	case errors.Is(err, client.ErrNotFound):
		log.Warnf("Persisted cart %s no longer exists, starting empty", handle)
		s.setState(StateUnresolved)
		return nil, nil
	default:
		s.setState(StateUnresolved)
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
}

// ResolveOrCreate reuses the persisted handle when the platform still knows
// the cart, and creates a fresh empty cart otherwise. An existing live cart is
// never abandoned: creation happens only when no handle is persisted or the
// platform itself reports the cart gone.
func (s *Synchronizer) ResolveOrCreate(ctx context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(ctx)
}

func (s *Synchronizer) resolveLocked(ctx context.Context) (*domain.Cart, error) {
	if s.State() == StateReady {
		if cached := s.snapshot.Get(); cached != nil {
			return cached, nil
		}
	}

	s.setState(StateResolving)

	handle, ok, err := s.handles.Load(ctx)
	if err != nil {
		s.setState(StateUnresolved)
		return nil, fmt.Errorf("failed to load cart handle: %w", err)
	}

	if ok {
		cart, err := s.client.FetchCart(ctx, handle)
		switch {
		case err == nil:
			s.snapshot.Set(cart)
			s.setState(StateReady)
			return cart, nil
		case errors.Is(err, client.ErrNotFound):
			log.Warnf("Cart %s no longer exists on the platform, creating a new one", handle)
		default:
			// Transient failure: do not discard a possibly live cart.
			s.setState(StateUnresolved)
			return nil, fmt.Errorf("failed to fetch cart: %w", err)
		}
	}

	cart, err := s.client.CreateCart(ctx)
	if err != nil {
		s.setState(StateUnresolved)
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	if err := s.handles.Save(ctx, cart.ID); err != nil {
		s.setState(StateUnresolved)
		return nil, fmt.Errorf("failed to persist cart handle: %w", err)
	}

	s.snapshot.Set(cart)
	s.setState(StateReady)
	log.Infof("Cart %s ready", cart.ID)
	return cart, nil
}

// AddLine adds quantity of a variant to the cart, resolving the cart first if
// needed. The server decides merge behavior for an already-present variant.
// On success the snapshot is replaced with the server-returned cart; on
// failure the prior snapshot is retained and the error surfaced.
func (s *Synchronizer) AddLine(ctx context.Context, variantID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrQuantityFloor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.resolveLocked(ctx)
	if err != nil {
		return nil, err
	}

	s.setState(StateMutating)
	updated, err := s.client.AddCartLines(ctx, current.ID, []client.LineInput{
		{MerchandiseID: variantID, Quantity: quantity},
	})
	if err != nil {
		s.failMutation(err)
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}

	s.snapshot.Set(updated)
	s.setState(StateReady)
	log.Debugf("Added variant %s x%d to cart %s", variantID, quantity, updated.ID)
	return updated, nil
}

// UpdateLineQuantity sets an existing line to newQuantity. Quantities below 1
// are rejected before any network call; mapping a decrement-below-1 to a
// removal is the caller's decision, not something this client ever sends.
func (s *Synchronizer) UpdateLineQuantity(ctx context.Context, lineID string, newQuantity int) (*domain.Cart, error) {
	if newQuantity < 1 {
		return nil, ErrQuantityFloor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.resolveLocked(ctx)
	if err != nil {
		return nil, err
	}

	s.setState(StateMutating)
	updated, err := s.client.UpdateCartLines(ctx, current.ID, []client.LineUpdateInput{
		{ID: lineID, Quantity: newQuantity},
	})
	if err != nil {
		s.failMutation(err)
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}

	s.snapshot.Set(updated)
	s.setState(StateReady)
	log.Debugf("Updated line %s to quantity %d in cart %s", lineID, newQuantity, updated.ID)
	return updated, nil
}

// CheckoutURL resolves the cart if needed and returns the platform checkout
// URL for it.
func (s *Synchronizer) CheckoutURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.resolveLocked(ctx)
	if err != nil {
		return "", err
	}
	return cart.CheckoutURL, nil
}

// failMutation keeps the prior snapshot and picks the next state: a cart the
// platform reports gone drops back to Unresolved so the next operation
// re-resolves; any other failure leaves the cart Ready with stale-but-
// consistent data.
func (s *Synchronizer) failMutation(err error) {
	if errors.Is(err, client.ErrNotFound) {
		log.Warnf("Cart disappeared during mutation, will re-resolve on next operation")
		s.setState(StateUnresolved)
		s.snapshot.Set(nil)
		return
	}
	s.setState(StateReady)
}
