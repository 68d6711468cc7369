// Package shopify is a minimal Shopify Admin API client, just enough to pull
// the product list the catalog syncs from.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIVersion is the Admin API version requests are pinned to.
const DefaultAPIVersion = "2025-10"

// Config holds Shopify connection settings.
type Config struct {
	ShopURL     string // e.g. https://my-store.myshopify.com
	AccessToken string
	APIVersion  string // defaults to DefaultAPIVersion
	Timeout     time.Duration
}

// Client talks to one Shopify store.
type Client struct {
	shopURL    string
	token      string
	apiVersion string
	client     *http.Client
}

// NewClient validates the config and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ShopURL == "" {
		return nil, fmt.Errorf("shopify shop URL is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("shopify access token is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		shopURL:    strings.TrimRight(cfg.ShopURL, "/"),
		token:      cfg.AccessToken,
		apiVersion: cfg.APIVersion,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Variant is one purchasable variant of a product.
type Variant struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
	SKU   string `json:"sku"`
}

// Product is a Shopify product as returned by the Admin API.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Vendor   string    `json:"vendor"`
	Variants []Variant `json:"variants"`
}

// Products fetches the store's product list.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	endpoint := fmt.Sprintf("%s/admin/api/%s/products.json", c.shopURL, c.apiVersion)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify error (status %d): %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return payload.Products, nil
}
