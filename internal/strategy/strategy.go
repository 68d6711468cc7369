// Package strategy names the serialization strategies under benchmark. A
// strategy pairs an outbound context encoding with an inbound adapter
// configuration; the harness treats strategies as opaque and compares their
// measured behavior.
package strategy

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jackzampolin/optbench/internal/adapter"
	"github.com/jackzampolin/optbench/internal/format"
	"github.com/jackzampolin/optbench/internal/signature"
)

// Strategy is one named pairing of context encoding and completion decoding.
type Strategy struct {
	name    string
	context format.Format
	adapter *adapter.Adapter
}

// Name returns the strategy identifier used in reports and CLI flags.
func (s *Strategy) Name() string { return s.name }

// ContextFormat returns the grammar used to serialize retrieval context into
// the prompt.
func (s *Strategy) ContextFormat() format.Format { return s.context }

// OutputFormat returns the grammar the model is instructed to answer in.
func (s *Strategy) OutputFormat() format.Format { return s.adapter.Primary() }

// Grammars returns the decode grammar names in priority order.
func (s *Strategy) Grammars() []string { return s.adapter.Grammars() }

// EncodeContext serializes an arbitrary value under the strategy's context
// grammar. The value is first round-tripped through encoding/json so that
// typed structs and raw document trees serialize identically.
func (s *Strategy) EncodeContext(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshaling context: %w", err)
	}
	var tree any
	if err := json.Unmarshal(b, &tree); err != nil {
		return "", fmt.Errorf("normalizing context: %w", err)
	}
	text, err := s.context.Encode(tree)
	if err != nil {
		return "", fmt.Errorf("encoding context as %s: %w", s.context.Name(), err)
	}
	return text, nil
}

// Parse decodes a completion under the strategy's adapter configuration.
func (s *Strategy) Parse(sig *signature.Signature, completion string) (map[string]any, error) {
	return s.adapter.Parse(sig, completion)
}

func mustAdapter(formats ...format.Format) *adapter.Adapter {
	a, err := adapter.New(formats...)
	if err != nil {
		panic(err)
	}
	return a
}

// registry holds every strategy under study. Strict variants decode a single
// grammar with the recovery path disabled, isolating the grammar's standalone
// compliance rate.
var registry = map[string]*Strategy{
	"baseline": {
		name:    "baseline",
		context: format.JSON(),
		adapter: mustAdapter(format.JSON()),
	},
	"json": {
		name:    "json",
		context: format.JSONMinified(),
		adapter: mustAdapter(format.JSON()),
	},
	"toon": {
		name:    "toon",
		context: format.TOON(),
		adapter: mustAdapter(format.TOON(), format.JSON()),
	},
	"toon-strict": {
		name:    "toon-strict",
		context: format.TOON(),
		adapter: adapter.NewStrict(format.TOON()),
	},
	"zon": {
		name:    "zon",
		context: format.ZON(),
		adapter: mustAdapter(format.ZON(), format.JSON()),
	},
	"zon-strict": {
		name:    "zon-strict",
		context: format.ZON(),
		adapter: adapter.NewStrict(format.ZON()),
	},
	"combined": {
		name:    "combined",
		context: format.TOON(),
		adapter: mustAdapter(format.TOON(), format.ZON(), format.JSON()),
	},
	"zon-combined": {
		name:    "zon-combined",
		context: format.ZON(),
		adapter: mustAdapter(format.ZON(), format.TOON(), format.JSON()),
	},
}

// Baseline is the strategy every other strategy is ranked against.
const Baseline = "baseline"

// Get returns the strategy registered under name.
func Get(name string) (*Strategy, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (have %v)", name, Names())
	}
	return s, nil
}

// Names returns every registered strategy name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered strategy in Names() order.
func All() []*Strategy {
	names := Names()
	out := make([]*Strategy, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name])
	}
	return out
}
