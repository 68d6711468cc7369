package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/jackzampolin/optbench/internal/providers"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func chatResult(tokens int, cost float64) *providers.ChatResult {
	return &providers.ChatResult{
		PromptTokens:     tokens - 100,
		CompletionTokens: 100,
		TotalTokens:      tokens,
		CostUSD:          cost,
		ExecutionTime:    250 * time.Millisecond,
		Provider:         "openrouter",
		ModelUsed:        "openai/gpt-4o-mini",
		Success:          true,
	}
}

func TestRecordChatAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	opts := RecordOpts{RunID: "run-1", Strategy: "toon", Query: "What products are available?"}
	if err := store.RecordChat(ctx, opts, chatResult(1000, 0.002)); err != nil {
		t.Fatal(err)
	}

	list, err := store.List(ctx, Filter{RunID: "run-1"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("metrics = %d, want 1", len(list))
	}
	m := list[0]
	if m.Strategy != "toon" || m.TotalTokens != 1000 || m.CostUSD != 0.002 {
		t.Errorf("metric = %+v", m)
	}
	if !m.Success {
		t.Error("success not recorded")
	}
	if m.ExecutionSeconds != 0.25 {
		t.Errorf("execution seconds = %v", m.ExecutionSeconds)
	}
	if m.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestRecordChatNil(t *testing.T) {
	store := openTestStore(t)
	if err := store.RecordChat(context.Background(), RecordOpts{}, nil); err == nil {
		t.Error("nil result accepted")
	}
}

func TestTotals(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, strat := range []string{"baseline", "baseline", "toon"} {
		opts := RecordOpts{RunID: "run-1", Strategy: strat}
		if err := store.RecordChat(ctx, opts, chatResult(1000+i, 0.01)); err != nil {
			t.Fatal(err)
		}
	}
	// A second run must not leak into run-1 totals.
	if err := store.RecordChat(ctx, RecordOpts{RunID: "run-2", Strategy: "toon"}, chatResult(5000, 1.0)); err != nil {
		t.Fatal(err)
	}

	cost, err := store.TotalCost(ctx, Filter{RunID: "run-1"})
	if err != nil {
		t.Fatal(err)
	}
	if cost < 0.0299 || cost > 0.0301 {
		t.Errorf("run-1 cost = %v, want 0.03", cost)
	}

	tokens, err := store.TotalTokens(ctx, Filter{RunID: "run-1", Strategy: "baseline"})
	if err != nil {
		t.Fatal(err)
	}
	if tokens != 2001 {
		t.Errorf("baseline tokens = %d, want 2001", tokens)
	}

	// Empty filter covers everything.
	all, err := store.TotalTokens(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if all != 1000+1001+1002+5000 {
		t.Errorf("all tokens = %d", all)
	}
}

func TestRunBreakdown(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.RecordChat(ctx, RecordOpts{RunID: "r", Strategy: "baseline"}, chatResult(2000, 0.05)); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordChat(ctx, RecordOpts{RunID: "r", Strategy: "toon"}, chatResult(1200, 0.03)); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordError(ctx, RecordOpts{RunID: "r", Strategy: "toon"}, "openrouter", "m", "http_error", time.Second); err != nil {
		t.Fatal(err)
	}

	rows, err := store.RunBreakdown(ctx, "r")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("breakdown rows = %d, want 2", len(rows))
	}
	// Ordered by spend: baseline first.
	if rows[0].Strategy != "baseline" || rows[0].Calls != 1 {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].Strategy != "toon" || rows[1].Calls != 2 || rows[1].Failures != 1 {
		t.Errorf("rows[1] = %+v", rows[1])
	}
}
