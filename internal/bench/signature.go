// Package bench runs each serialization strategy over a query set against an
// LLM provider and aggregates token, latency, and parse-reliability metrics.
package bench

import "github.com/jackzampolin/optbench/internal/signature"

// ResponseSignature is the product-recommendation output schema every
// strategy is benchmarked against.
func ResponseSignature() *signature.Signature {
	recommendation := signature.MustNew(
		signature.Field{Name: "product_id", Spec: signature.String().Describe("Product identifier from the context")},
		signature.Field{Name: "title", Spec: signature.String().Describe("Product title")},
		signature.Field{Name: "reason", Spec: signature.String().Describe("Why this product matches the query")},
		signature.Field{Name: "confidence", Spec: signature.Float().Describe("Match confidence between 0 and 1")},
	)
	return signature.MustNew(
		signature.Field{Name: "recommendations", Spec: signature.Sequence(signature.Record(recommendation))},
		signature.Field{Name: "total_products_reviewed", Spec: signature.Int()},
		signature.Field{Name: "answer", Spec: signature.String().Describe("Natural-language answer to the query")},
	)
}
