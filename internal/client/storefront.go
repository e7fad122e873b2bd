package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"moreyou/storefront/internal/config"
	"moreyou/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const accessTokenHeader = "X-Shopify-Storefront-Access-Token"

// LineInput adds a variant to the cart.
type LineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// LineUpdateInput changes the quantity of an existing line.
type LineUpdateInput struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Client is the gateway to the vendor storefront GraphQL API. Queries that
// resolve to null return ErrNotFound; failures are either *TransportError or
// *PlatformError.
type Client interface {
	CreateCart(ctx context.Context) (*domain.Cart, error)
	FetchCart(ctx context.Context, cartID string) (*domain.Cart, error)
	AddCartLines(ctx context.Context, cartID string, lines []LineInput) (*domain.Cart, error)
	UpdateCartLines(ctx context.Context, cartID string, lines []LineUpdateInput) (*domain.Cart, error)
	CollectionByHandle(ctx context.Context, handle string, first int) (*domain.Collection, error)
	ProductByHandle(ctx context.Context, handle string) (*domain.Product, error)
	Products(ctx context.Context, first int) ([]domain.Product, error)
}

type storefrontClient struct {
	rl       ratelimit.Limiter
	config   config.StorefrontConfig
	endpoint string
	ops      operations

	// Queries may be retried, cart mutations are not idempotent on the
	// platform side and get exactly one attempt.
	queryHTTP    *resty.Client
	mutationHTTP *resty.Client

	timeout time.Duration
}

func NewStorefrontClient(cfg config.StorefrontConfig, linesPageSize int) Client {
	timeout := time.Duration(cfg.Timeout) * time.Second

	rps := cfg.MaxRequestsPerSecond
	if rps < 1 {
		rps = 1
	}

	queryHTTP := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader(accessTokenHeader, cfg.AccessToken)

	mutationHTTP := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader(accessTokenHeader, cfg.AccessToken)

	return &storefrontClient{
		rl:           ratelimit.New(rps),
		config:       cfg,
		endpoint:     cfg.Endpoint(),
		ops:          newOperations(linesPageSize),
		queryHTTP:    queryHTTP,
		mutationHTTP: mutationHTTP,
		timeout:      timeout,
	}
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// execute sends one operation document plus variables and returns the raw data
// payload. When the platform reports errors alongside partial data, the errors
// are logged and the partial payload is still returned; errors with no data at
// all become a PlatformError.
func (c *storefrontClient) execute(ctx context.Context, httpClient *resty.Client, operation string, variables map[string]any) (json.RawMessage, error) {
	c.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := httpClient.R().
		SetContext(reqCtx).
		SetBody(map[string]any{
			"query":     operation,
			"variables": variables,
		}).
		Post(c.endpoint)

	if err != nil {
		if ctx.Err() != nil {
			return nil, &TransportError{Err: fmt.Errorf("request cancelled: %w", ctx.Err())}
		}
		return nil, &TransportError{Err: err}
	}

	if resp.IsError() {
		return nil, &TransportError{Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())}
	}

	var env envelope
	if err := json.Unmarshal([]byte(resp.String()), &env); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed response body: %w", err)}
	}

	if len(env.Errors) > 0 {
		messages := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			messages = append(messages, e.Message)
		}
		log.Errorf("Storefront API errors: %v", messages)

		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, &PlatformError{Messages: messages}
		}
		// Partial success: pass the data through, callers nil-check everything.
	}

	return env.Data, nil
}

func (c *storefrontClient) CreateCart(ctx context.Context) (*domain.Cart, error) {
	data, err := c.execute(ctx, c.mutationHTTP, c.ops.cartCreate, map[string]any{
		"input": map[string]any{"lines": []any{}},
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		CartCreate *struct {
			Cart *cartPayload `json:"cart"`
		} `json:"cartCreate"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed cartCreate payload: %w", err)}
	}
	if out.CartCreate == nil {
		return nil, fmt.Errorf("cartCreate returned no cart")
	}

	cart, err := decodeCart(out.CartCreate.Cart)
	if err != nil {
		if err == ErrNotFound {
			return nil, fmt.Errorf("cartCreate returned no cart")
		}
		return nil, err
	}

	log.Debugf("Created cart %s", cart.ID)
	return cart, nil
}

func (c *storefrontClient) FetchCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	data, err := c.execute(ctx, c.queryHTTP, c.ops.cartQuery, map[string]any{"id": cartID})
	if err != nil {
		return nil, err
	}

	var out struct {
		Cart *cartPayload `json:"cart"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed cart payload: %w", err)}
	}

	return decodeCart(out.Cart)
}

func (c *storefrontClient) AddCartLines(ctx context.Context, cartID string, lines []LineInput) (*domain.Cart, error) {
	data, err := c.execute(ctx, c.mutationHTTP, c.ops.cartLinesAdd, map[string]any{
		"cartId": cartID,
		"lines":  lines,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		CartLinesAdd *struct {
			Cart *cartPayload `json:"cart"`
		} `json:"cartLinesAdd"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed cartLinesAdd payload: %w", err)}
	}
	if out.CartLinesAdd == nil {
		return nil, fmt.Errorf("cartLinesAdd returned no cart")
	}

	return decodeCart(out.CartLinesAdd.Cart)
}

func (c *storefrontClient) UpdateCartLines(ctx context.Context, cartID string, lines []LineUpdateInput) (*domain.Cart, error) {
	data, err := c.execute(ctx, c.mutationHTTP, c.ops.cartLinesUpdate, map[string]any{
		"cartId": cartID,
		"lines":  lines,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		CartLinesUpdate *struct {
			Cart *cartPayload `json:"cart"`
		} `json:"cartLinesUpdate"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed cartLinesUpdate payload: %w", err)}
	}
	if out.CartLinesUpdate == nil {
		return nil, fmt.Errorf("cartLinesUpdate returned no cart")
	}

	return decodeCart(out.CartLinesUpdate.Cart)
}

func (c *storefrontClient) CollectionByHandle(ctx context.Context, handle string, first int) (*domain.Collection, error) {
	data, err := c.execute(ctx, c.queryHTTP, c.ops.collection, map[string]any{
		"handle": handle,
		"first":  first,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Collection *collectionPayload `json:"collection"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed collection payload: %w", err)}
	}

	return decodeCollection(out.Collection)
}

func (c *storefrontClient) ProductByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	data, err := c.execute(ctx, c.queryHTTP, c.ops.product, map[string]any{"handle": handle})
	if err != nil {
		return nil, err
	}

	var out struct {
		Product *productPayload `json:"product"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed product payload: %w", err)}
	}

	return decodeProduct(out.Product)
}

func (c *storefrontClient) Products(ctx context.Context, first int) ([]domain.Product, error) {
	data, err := c.execute(ctx, c.queryHTTP, c.ops.products, map[string]any{"first": first})
	if err != nil {
		return nil, err
	}

	var out struct {
		Products *connection[productPayload] `json:"products"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed products payload: %w", err)}
	}
	if out.Products == nil {
		return nil, nil
	}

	products := make([]domain.Product, 0, len(out.Products.Edges))
	for _, e := range out.Products.Edges {
		node := e.Node
		product, err := decodeProduct(&node)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		products = append(products, *product)
	}

	return products, nil
}
