package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"moreyou/storefront/internal/catalog"
	"moreyou/storefront/internal/config"
	"moreyou/storefront/internal/ui"
	"moreyou/storefront/internal/view"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const relatedGridSize = 8

// Server renders the storefront pages and forwards cart intents to the
// dispatcher. Each page handler degrades independently: a catalog failure
// renders that page's empty state while the cart endpoints keep working.
type Server struct {
	httpServer *http.Server
	catalog    *catalog.Service
	dispatcher *ui.Dispatcher
	projector  *view.Projector
	renderer   *view.Renderer
}

func New(
	cfg config.ServerConfig,
	catalogService *catalog.Service,
	dispatcher *ui.Dispatcher,
	projector *view.Projector,
	renderer *view.Renderer,
) *Server {
	s := &Server{
		catalog:    catalogService,
		dispatcher: dispatcher,
		projector:  projector,
		renderer:   renderer,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHome)
	mux.HandleFunc("GET /collection", s.handleCollection)
	mux.HandleFunc("GET /product", s.handleProduct)
	mux.HandleFunc("GET /cart", s.handleCartFragment)
	mux.HandleFunc("POST /cart/add", s.handleCartAdd)
	mux.HandleFunc("POST /cart/qty", s.handleCartQuantity)
	mux.HandleFunc("GET /checkout", s.handleCheckout)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Server shutdown failed: %v", err)
		}
	}()

	log.Infof("Storefront server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	collection, err := s.catalog.Featured(r.Context())
	if err != nil || collection == nil {
		if err != nil {
			log.Errorf("Home page init failed: %v", err)
		}
		writeHTML(w, `<div data-featured-grid><p>Featured products coming soon.</p></div>`)
		return
	}

	grid, err := s.renderer.ProductGrid(s.projector.ProjectProductCards(collection.Products))
	if err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, `<div data-featured-grid>`+grid+`</div>`)
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Query().Get("handle")

	var collectionView view.CollectionView
	if handle != "" {
		collection, err := s.catalog.Collection(r.Context(), handle)
		if err != nil {
			log.Errorf("Collection page init failed: %v", err)
		}
		if collection == nil {
			collectionView = view.CollectionView{Title: "Shop All"}
		} else {
			collectionView = s.projector.ProjectCollection(collection)
		}
	} else {
		products, err := s.catalog.All(r.Context(), 40)
		if err != nil {
			log.Errorf("Collection page init failed: %v", err)
		}
		collectionView = view.CollectionView{
			Title: "Shop All",
			Cards: s.projector.ProjectProductCards(products),
		}
	}

	page, err := s.renderer.CollectionPage(collectionView)
	if err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, page)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Query().Get("handle")
	if handle == "" {
		http.Error(w, "missing product handle", http.StatusBadRequest)
		return
	}

	// The product body and the related grid load independently; a related
	// grid failure never blocks the product itself.
	var (
		product []byte
		related string
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		p, err := s.catalog.Product(gctx, handle)
		if err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		rendered, err := s.renderer.ProductPage(s.projector.ProjectProductPage(p))
		if err != nil {
			return err
		}
		product = []byte(rendered)
		return nil
	})
	g.Go(func() error {
		products, err := s.catalog.Related(gctx, handle, relatedGridSize)
		if err != nil {
			log.Warnf("Related grid unavailable: %v", err)
			return nil
		}
		grid, err := s.renderer.ProductGrid(s.projector.ProjectProductCards(products))
		if err != nil {
			return err
		}
		related = grid
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Errorf("Product page init failed: %v", err)
		http.Error(w, "product unavailable", http.StatusBadGateway)
		return
	}
	if product == nil {
		http.NotFound(w, r)
		return
	}

	writeHTML(w, string(product)+`<div class="product-grid" data-related-grid>`+related+`</div>`)
}

func (s *Server) handleCartFragment(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.dispatcher.Dispatch(r.Context(), ui.Intent{Kind: ui.IntentRefreshCart})
	if err != nil {
		// Stale-but-consistent beats broken: render the empty drawer rather
		// than failing the fragment.
		log.Warnf("Cart fragment degraded to empty state: %v", err)
		outcome.Cart = s.projector.ProjectCart(nil)
	}
	drawer, err := s.renderer.CartDrawer(outcome.Cart)
	if err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, drawer)
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	variantID := r.PostFormValue("variant_id")
	if variantID == "" {
		http.Error(w, "missing variant_id", http.StatusBadRequest)
		return
	}
	quantity, _ := strconv.Atoi(r.PostFormValue("quantity"))

	outcome, err := s.dispatcher.Dispatch(r.Context(), ui.Intent{
		Kind:      ui.IntentAddToCart,
		VariantID: variantID,
		Quantity:  quantity,
	})
	if err != nil {
		http.Error(w, "add to cart failed", http.StatusBadGateway)
		return
	}
	s.writeCartItems(w, outcome.Cart)
}

func (s *Server) handleCartQuantity(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	lineID := r.PostFormValue("line_id")
	currentQty, _ := strconv.Atoi(r.PostFormValue("current_quantity"))
	delta, _ := strconv.Atoi(r.PostFormValue("delta"))
	if lineID == "" || delta == 0 {
		http.Error(w, "missing line_id or delta", http.StatusBadRequest)
		return
	}

	outcome, err := s.dispatcher.Dispatch(r.Context(), ui.Intent{
		Kind:            ui.IntentChangeQuantity,
		LineID:          lineID,
		CurrentQuantity: currentQty,
		Delta:           delta,
	})
	if err != nil {
		http.Error(w, "quantity update failed", http.StatusBadGateway)
		return
	}
	s.writeCartItems(w, outcome.Cart)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.dispatcher.Dispatch(r.Context(), ui.Intent{Kind: ui.IntentCheckout})
	if err != nil || outcome.CheckoutURL == "" {
		if err != nil {
			log.Errorf("Checkout failed: %v", err)
		}
		http.Error(w, "checkout unavailable", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, outcome.CheckoutURL, http.StatusSeeOther)
}

func (s *Server) writeCartItems(w http.ResponseWriter, cartView view.CartView) {
	items, err := s.renderer.CartItems(cartView)
	if err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, items)
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
