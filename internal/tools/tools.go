// Package tools exposes the catalog operations as named tools with JSON
// arguments and text results.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ssactivewear-mcp/internal/domain"
	"ssactivewear-mcp/internal/events"
	"ssactivewear-mcp/internal/service/product"
)

// ErrUnknownTool is returned for names that are not registered.
var ErrUnknownTool = errors.New("Unknown tool")

// Catalog is the set of operations the tools dispatch to.
type Catalog interface {
	Search(ctx context.Context, in product.SearchInput) (product.SearchOutput, error)
	Details(ctx context.Context, identifier string) (domain.Record, error)
	Inventory(ctx context.Context, in product.InventoryInput) (product.InventoryOutput, error)
	Pricing(ctx context.Context, in product.PricingInput) ([]product.PriceQuote, error)
	Export(ctx context.Context, in product.ExportInput) (product.ExportOutput, error)
}

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the outcome of a tool call. Failures are results too, with
// IsError set and an "Error: ..." text.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Text returns the concatenated text content.
func (r Result) Text() string {
	var s string
	for _, c := range r.Content {
		s += c.Text
	}
	return s
}

type outcome struct {
	text     string
	results  int
	strategy string
}

type handler func(ctx context.Context, args json.RawMessage) (outcome, error)

type Registry struct {
	catalog  Catalog
	events   events.Publisher
	logger   *zap.Logger
	handlers map[string]handler
}

func New(catalog Catalog, publisher events.Publisher, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	r := &Registry{catalog: catalog, events: publisher, logger: logger}
	r.handlers = map[string]handler{
		SearchProducts:      r.search,
		GetProductDetails:   r.details,
		CheckInventory:      r.inventory,
		GetPricing:          r.pricing,
		DownloadProductData: r.export,
	}
	return r
}

// List returns the tool definitions in a stable order.
func (r *Registry) List() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Has reports whether name is a registered tool.
func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Call runs the named tool. It never returns a Go error; failures are
// rendered into the Result.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) Result {
	started := time.Now()
	h, ok := r.handlers[name]
	if !ok {
		return errorResult(fmt.Errorf("%w: %s", ErrUnknownTool, name))
	}

	out, err := h(ctx, args)
	r.publish(ctx, name, started, out, err)
	if err != nil {
		r.logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
		return errorResult(err)
	}
	r.logger.Info("tool call",
		zap.String("tool", name),
		zap.Int("results", out.results),
		zap.Duration("took", time.Since(started)))
	return Result{Content: []Content{{Type: "text", Text: out.text}}}
}

func (r *Registry) publish(ctx context.Context, name string, started time.Time, out outcome, err error) {
	e := events.NewEvent(name, started)
	e.Strategy = out.strategy
	e.Results = out.results
	if err != nil {
		e.Error = err.Error()
	}
	if perr := r.events.Publish(ctx, e); perr != nil {
		r.logger.Warn("publish event", zap.String("tool", name), zap.Error(perr))
	}
}

func errorResult(err error) Result {
	text := "Error: " + err.Error()
	if hint := domain.Hint(err); hint != "" {
		text += "\nSuggestion: " + hint
	}
	return Result{Content: []Content{{Type: "text", Text: text}}, IsError: true}
}

func (r *Registry) search(ctx context.Context, raw json.RawMessage) (outcome, error) {
	var args searchArgs
	if err := decodeArgs(raw, &args); err != nil {
		return outcome{}, err
	}
	res, err := r.catalog.Search(ctx, product.SearchInput{
		Query:    args.Query,
		Category: args.Category,
		Brand:    args.Brand,
		Limit:    args.Limit,
	})
	if err != nil {
		return outcome{}, err
	}
	return jsonOutcome(res, res.TotalResults, string(res.Strategy))
}

func (r *Registry) details(ctx context.Context, raw json.RawMessage) (outcome, error) {
	var args detailsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return outcome{}, err
	}
	rec, err := r.catalog.Details(ctx, args.Identifier)
	if err != nil {
		return outcome{}, err
	}
	return jsonOutcome(rec, 1, "")
}

func (r *Registry) inventory(ctx context.Context, raw json.RawMessage) (outcome, error) {
	var args inventoryArgs
	if err := decodeArgs(raw, &args); err != nil {
		return outcome{}, err
	}
	res, err := r.catalog.Inventory(ctx, product.InventoryInput{Identifiers: args.Identifiers, Warehouse: args.Warehouse})
	if err != nil {
		return outcome{}, err
	}
	return jsonOutcome(res, res.TotalResults, "")
}

func (r *Registry) pricing(ctx context.Context, raw json.RawMessage) (outcome, error) {
	var args pricingArgs
	if err := decodeArgs(raw, &args); err != nil {
		return outcome{}, err
	}
	quotes, err := r.catalog.Pricing(ctx, product.PricingInput{Identifiers: args.Identifiers, Quantity: args.Quantity})
	if err != nil {
		return outcome{}, err
	}
	return jsonOutcome(quotes, len(quotes), "")
}

func (r *Registry) export(ctx context.Context, raw json.RawMessage) (outcome, error) {
	var args exportArgs
	if err := decodeArgs(raw, &args); err != nil {
		return outcome{}, err
	}
	res, err := r.catalog.Export(ctx, product.ExportInput{Format: args.Format, IncludeInventory: *args.IncludeInventory})
	if err != nil {
		return outcome{}, err
	}
	return outcome{text: res.Body}, nil
}

func jsonOutcome(v any, results int, strategy string) (outcome, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return outcome{}, fmt.Errorf("encode result: %w", err)
	}
	return outcome{text: string(b), results: results, strategy: strategy}, nil
}
