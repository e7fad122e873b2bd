package container

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"moreyou/storefront/internal/cart"
	"moreyou/storefront/internal/catalog"
	"moreyou/storefront/internal/client"
	"moreyou/storefront/internal/config"
	"moreyou/storefront/internal/repository"
	"moreyou/storefront/internal/server"
	"moreyou/storefront/internal/state"
	"moreyou/storefront/internal/ui"
	"moreyou/storefront/internal/view"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.Client
	Handles    state.HandleStore
	Snapshot   *state.SnapshotCell
	Cart       *cart.Synchronizer
	Catalog    *catalog.Service
	Projector  *view.Projector
	Renderer   *view.Renderer
	Dispatcher *ui.Dispatcher
	Server     *server.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	db, err := pgxpool.New(context.Background(),
		fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
		))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	container.db = db

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	container.redis = rdb
	log.Info("Connected to Redis successfully")

	container.Client = client.NewStorefrontClient(cfg.Storefront, cfg.Cart.LinesPageSize)
	container.Handles = state.NewRedisHandleStore(rdb, cfg.Cart.Profile)
	container.Snapshot = state.NewSnapshotCell()
	container.Cart = cart.NewSynchronizer(container.Client, container.Handles, container.Snapshot)

	productRepo := repository.NewProductRepository(db)
	container.Catalog = catalog.NewService(
		container.Client,
		catalog.NewRedisCache(rdb),
		productRepo,
		cfg.Storefront.FeaturedCollection,
		time.Duration(cfg.Redis.CatalogCacheTTL)*time.Second,
	)

	container.Projector = view.NewProjector()
	container.Renderer = view.NewRenderer()
	container.Dispatcher = ui.NewDispatcher(container.Cart, container.Projector)

	container.Server = server.New(
		cfg.Server,
		container.Catalog,
		container.Dispatcher,
		container.Projector,
		container.Renderer,
	)

	return container, nil
}

// Run starts the page server and rehydrates the cart from the persisted
// handle. The two run independently: a failed rehydrate leaves the cart
// endpoints working off an empty state.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	g.Go(func() error {
		if _, err := c.Cart.ResolveInitialState(ctx); err != nil {
			log.Warnf("Cart rehydration failed, starting empty: %v", err)
		}
		return nil
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	c.db.Close()
	if err := c.redis.Close(); err != nil {
		return err
	}

	log.Info("Container shut down successfully")
	return nil
}
