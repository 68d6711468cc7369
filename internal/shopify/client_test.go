package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{AccessToken: "tok"}); err == nil {
		t.Error("missing shop URL accepted")
	}
	if _, err := NewClient(Config{ShopURL: "https://store.myshopify.com"}); err == nil {
		t.Error("missing access token accepted")
	}
}

func TestProducts(t *testing.T) {
	var gotPath, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"products": [
				{
					"id": 101,
					"title": "Trail Running Shoes",
					"body_html": "Lightweight",
					"vendor": "Acme",
					"variants": [{"id": 1, "title": "Size 9", "price": "89.99", "sku": "TRS-9"}]
				}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{ShopURL: server.URL + "/", AccessToken: "shpat_test"})
	if err != nil {
		t.Fatal(err)
	}

	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}

	if gotPath != "/admin/api/"+DefaultAPIVersion+"/products.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotToken != "shpat_test" {
		t.Errorf("access token header = %q", gotToken)
	}
	if len(products) != 1 {
		t.Fatalf("products = %d, want 1", len(products))
	}
	p := products[0]
	if p.ID != 101 || p.Title != "Trail Running Shoes" {
		t.Errorf("product = %+v", p)
	}
	if len(p.Variants) != 1 || p.Variants[0].Price != "89.99" {
		t.Errorf("variants = %+v", p.Variants)
	}
}

func TestProductsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors": "Invalid API key or access token"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{ShopURL: server.URL, AccessToken: "bad"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Products(context.Background()); err == nil {
		t.Error("expected error on 401")
	}
}
