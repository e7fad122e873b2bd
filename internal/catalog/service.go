package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"moreyou/storefront/internal/client"
	"moreyou/storefront/internal/domain"
	"moreyou/storefront/internal/repository"

	log "github.com/sirupsen/logrus"
)

const (
	collectionPageSize = 40
	featuredPageSize   = 8
)

// Service serves the read side of the storefront: collections and products,
// with a read-through cache in front of the platform and a best-effort
// archive of everything fetched. A query that resolves to nothing returns
// (nil, nil): absence renders as an empty state, not as a failure.
type Service struct {
	client         client.Client
	cache          Cache
	products       repository.ProductRepository
	featuredHandle string
	cacheTTL       time.Duration
}

func NewService(
	apiClient client.Client,
	cache Cache,
	products repository.ProductRepository,
	featuredHandle string,
	cacheTTL time.Duration,
) *Service {
	return &Service{
		client:         apiClient,
		cache:          cache,
		products:       products,
		featuredHandle: featuredHandle,
		cacheTTL:       cacheTTL,
	}
}

// Featured returns the configured featured collection for the home page.
func (s *Service) Featured(ctx context.Context) (*domain.Collection, error) {
	return s.collection(ctx, s.featuredHandle, featuredPageSize)
}

// Collection returns a collection by handle, or nil when the platform does
// not know it.
func (s *Service) Collection(ctx context.Context, handle string) (*domain.Collection, error) {
	return s.collection(ctx, handle, collectionPageSize)
}

func (s *Service) collection(ctx context.Context, handle string, first int) (*domain.Collection, error) {
	cacheKey := fmt.Sprintf("collection:%s:%d", handle, first)

	var cached domain.Collection
	if s.cacheLookup(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	collection, err := s.client.CollectionByHandle(ctx, handle, first)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch collection %s: %w", handle, err)
	}

	s.cacheStore(ctx, cacheKey, collection)
	s.archiveProducts(ctx, collection.Products)
	return collection, nil
}

// Product returns the full product by handle, or nil when unknown.
func (s *Service) Product(ctx context.Context, handle string) (*domain.Product, error) {
	cacheKey := "product:" + handle

	var cached domain.Product
	if s.cacheLookup(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	product, err := s.client.ProductByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", handle, err)
	}

	s.cacheStore(ctx, cacheKey, product)
	s.archiveProducts(ctx, []domain.Product{*product})
	return product, nil
}

// All lists the first n products of the store.
func (s *Service) All(ctx context.Context, first int) ([]domain.Product, error) {
	cacheKey := fmt.Sprintf("products:%d", first)

	var cached []domain.Product
	if s.cacheLookup(ctx, cacheKey, &cached) {
		return cached, nil
	}

	products, err := s.client.Products(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	s.cacheStore(ctx, cacheKey, products)
	s.archiveProducts(ctx, products)
	return products, nil
}

// Related lists products for the "you may also like" grid, excluding the
// product being viewed.
func (s *Service) Related(ctx context.Context, excludeHandle string, first int) ([]domain.Product, error) {
	products, err := s.All(ctx, first+1)
	if err != nil {
		return nil, err
	}

	related := make([]domain.Product, 0, first)
	for _, p := range products {
		if p.Handle == excludeHandle {
			continue
		}
		related = append(related, p)
		if len(related) == first {
			break
		}
	}
	return related, nil
}

func (s *Service) cacheLookup(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warnf("Catalog cache read degraded to direct fetch: %v", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Warnf("Discarding undecodable catalog cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (s *Service) cacheStore(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warnf("Failed to encode catalog cache entry %s: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		log.Warnf("Failed to write catalog cache entry %s: %v", key, err)
	}
}

// archiveProducts is best-effort: the storefront must keep rendering even
// when the archive is down.
func (s *Service) archiveProducts(ctx context.Context, products []domain.Product) {
	if s.products == nil {
		return
	}
	for i := range products {
		if err := s.products.SaveProduct(ctx, &products[i]); err != nil {
			log.Errorf("Failed to archive product %s: %v", products[i].Handle, err)
		}
	}
}
