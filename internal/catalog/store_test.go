package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackzampolin/optbench/internal/shopify"
)

type fakeFetcher struct {
	products []shopify.Product
	err      error
}

func (f *fakeFetcher) Products(ctx context.Context) ([]shopify.Product, error) {
	return f.products, f.err
}

func testProducts() []shopify.Product {
	return []shopify.Product{
		{
			ID:       101,
			Title:    "Trail Running Shoes",
			BodyHTML: "Lightweight shoes for rocky terrain",
			Variants: []shopify.Variant{
				{ID: 1, Title: "Size 9", Price: "89.99", SKU: "TRS-9"},
				{ID: 2, Title: "Size 10", Price: "89.99", SKU: "TRS-10"},
			},
		},
		{
			ID:       102,
			Title:    "Insulated Water Bottle",
			BodyHTML: "Keeps drinks cold for 24 hours",
			Variants: []shopify.Variant{
				{ID: 3, Title: "500ml", Price: "24.50", SKU: "IWB-500"},
			},
		},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSync(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	result, err := store.Sync(ctx, &fakeFetcher{products: testProducts()})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if result.Status != "success" {
		t.Errorf("status = %q, want success", result.Status)
	}
	if result.ProductsCount != 2 {
		t.Errorf("products count = %d, want 2", result.ProductsCount)
	}

	p, err := store.ProductByID(ctx, "101")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("product 101 not found after sync")
	}
	if p.Title != "Trail Running Shoes" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Price != 89.99 {
		t.Errorf("price = %v, want 89.99 (first variant)", p.Price)
	}
	if len(p.Variants) != 2 {
		t.Errorf("variants = %d, want 2", len(p.Variants))
	}
}

func TestSyncReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Sync(ctx, &fakeFetcher{products: testProducts()}); err != nil {
		t.Fatal(err)
	}

	updated := testProducts()
	updated[0].Title = "Trail Running Shoes v2"
	updated[0].Variants[0].Price = "99.99"
	if _, err := store.Sync(ctx, &fakeFetcher{products: updated}); err != nil {
		t.Fatal(err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count after re-sync = %d, want 2", count)
	}

	p, err := store.ProductByID(ctx, "101")
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != "Trail Running Shoes v2" {
		t.Errorf("title not replaced: %q", p.Title)
	}
	if p.Price != 99.99 {
		t.Errorf("price not replaced: %v", p.Price)
	}
}

func TestSyncFetchError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	result, err := store.Sync(ctx, &fakeFetcher{err: fmt.Errorf("upstream down")})
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Status != "error" {
		t.Errorf("status = %q, want error", result.Status)
	}
	if result.ErrorMessage == "" {
		t.Error("error message not recorded")
	}

	history, err := store.SyncHistory(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Status != "error" {
		t.Errorf("sync log = %+v", history)
	}
}

func TestSyncNoProducts(t *testing.T) {
	store := openTestStore(t)

	result, err := store.Sync(context.Background(), &fakeFetcher{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != "no_products" {
		t.Errorf("status = %q, want no_products", result.Status)
	}
}

func TestProductByIDAbsent(t *testing.T) {
	store := openTestStore(t)

	p, err := store.ProductByID(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Errorf("expected nil for absent product, got %+v", p)
	}
}

func TestSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Sync(ctx, &fakeFetcher{products: testProducts()}); err != nil {
		t.Fatal(err)
	}

	hits, err := store.Search(ctx, "bottle")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ProductID != "102" {
		t.Errorf("search hits = %+v", hits)
	}

	// Description matches too.
	hits, err = store.Search(ctx, "rocky terrain")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ProductID != "101" {
		t.Errorf("description search hits = %+v", hits)
	}

	hits, err = store.Search(ctx, "kayak")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("unexpected hits = %+v", hits)
	}
}

func TestPriceRange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Sync(ctx, &fakeFetcher{products: testProducts()}); err != nil {
		t.Fatal(err)
	}

	pr, err := store.PriceRange(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pr.Min != 24.50 || pr.Max != 89.99 {
		t.Errorf("price range = %+v", pr)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Sync(ctx, &fakeFetcher{products: testProducts()}); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.Clear(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("count after clear = %d", count)
	}

	history, err := store.SyncHistory(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	// Newest first: clear entry, then the api sync.
	if len(history) != 2 {
		t.Fatalf("history entries = %d, want 2", len(history))
	}
	if history[0].SyncType != "clear" || history[1].SyncType != "api" {
		t.Errorf("history order = %q, %q", history[0].SyncType, history[1].SyncType)
	}
}
