package catalog

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"ssactivewear-mcp/internal/domain"
)

// ProductsPath is the upstream products endpoint; identifiers are appended
// comma separated.
const ProductsPath = "products/"

// Fetcher performs one authenticated GET against the vendor API and returns
// the raw response body.
type Fetcher interface {
	Fetch(ctx context.Context, path string, params url.Values) ([]byte, error)
}

// Strategy names the tier that produced a search result.
type Strategy string

const (
	StrategyDirect   Strategy = "direct"
	StrategyStyle    Strategy = "style"
	StrategyFiltered Strategy = "filtered"
)

// Criteria describes one search request. Limit <= 0 disables truncation.
type Criteria struct {
	Query    string
	Brand    string
	Category string
	Limit    int
}

// Result is the outcome of a search.
type Result struct {
	Records  []domain.Record
	Strategy Strategy
}

type outcome uint8

const (
	outcomeOK outcome = iota
	outcomeSkip
	outcomeFail
)

type tierResult struct {
	outcome outcome
	records []domain.Record
	err     error
}

func resolved(records []domain.Record) tierResult {
	return tierResult{outcome: outcomeOK, records: records}
}

func skipped() tierResult {
	return tierResult{outcome: outcomeSkip}
}

func failed(err error) tierResult {
	return tierResult{outcome: outcomeFail, err: err}
}

type failureAction uint8

const (
	propagate failureAction = iota
	fallThrough
)

// onFailure decides what a failed tier means for the search. Only the direct
// lookup may fall through to the broader tiers.
var onFailure = map[Strategy]failureAction{
	StrategyDirect:   fallThrough,
	StrategyStyle:    propagate,
	StrategyFiltered: propagate,
}

type tier struct {
	strategy Strategy
	applies  func(IdentifierClass) bool
	run      func(ctx context.Context, c Criteria) tierResult
}

// Selector resolves a query through the direct, style and filtered tiers.
type Selector struct {
	fetcher Fetcher
	logger  *zap.Logger
	tiers   []tier
}

func NewSelector(fetcher Fetcher, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Selector{fetcher: fetcher, logger: logger}
	s.tiers = []tier{
		{strategy: StrategyDirect, applies: is(DirectIdentifier), run: s.direct},
		{strategy: StrategyStyle, applies: is(StyleNamePattern), run: s.style},
		{strategy: StrategyFiltered, applies: always, run: s.filtered},
	}
	return s
}

func is(class IdentifierClass) func(IdentifierClass) bool {
	return func(c IdentifierClass) bool { return c == class }
}

func always(IdentifierClass) bool { return true }

// Search classifies c.Query and walks the tiers in order until one produces
// a result or fails with a propagating error.
func (s *Selector) Search(ctx context.Context, c Criteria) (Result, error) {
	class := Classify(c.Query)
	for _, t := range s.tiers {
		if !t.applies(class) {
			continue
		}
		res := t.run(ctx, c)
		if res.outcome == outcomeFail && onFailure[t.strategy] == fallThrough {
			s.logger.Debug("search tier failed, falling through",
				zap.String("strategy", string(t.strategy)),
				zap.String("query", c.Query),
				zap.Error(res.err))
			res = skipped()
		}
		switch res.outcome {
		case outcomeOK:
			s.logger.Debug("search resolved",
				zap.String("strategy", string(t.strategy)),
				zap.String("class", class.String()),
				zap.Int("count", len(res.records)))
			return Result{Records: res.records, Strategy: t.strategy}, nil
		case outcomeFail:
			return Result{}, res.err
		}
	}
	return Result{Records: []domain.Record{}, Strategy: StrategyFiltered}, nil
}

func (s *Selector) direct(ctx context.Context, c Criteria) tierResult {
	records, err := s.fetchProducts(ctx, ProductsPath+url.PathEscape(c.Query), nil)
	if err != nil {
		return failed(err)
	}
	if len(records) == 0 {
		return skipped()
	}
	return resolved(records)
}

func (s *Selector) style(ctx context.Context, c Criteria) tierResult {
	records, err := s.fetchProducts(ctx, ProductsPath, url.Values{"style": {c.Query}})
	if err != nil {
		return failed(err)
	}
	return resolved(limit(filter(records, "", c.Brand, c.Category), c.Limit))
}

func (s *Selector) filtered(ctx context.Context, c Criteria) tierResult {
	records, err := s.fetchProducts(ctx, ProductsPath, nil)
	if err != nil {
		return failed(err)
	}
	return resolved(limit(filter(records, c.Query, c.Brand, c.Category), c.Limit))
}

func (s *Selector) fetchProducts(ctx context.Context, path string, params url.Values) ([]domain.Record, error) {
	raw, err := s.fetcher.Fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return Normalize(raw)
}

var searchableFields = []string{"sku", "styleName", "brandName", "colorName", "categoryName", "description"}

// filter keeps records matching every non-empty criterion, in upstream order.
func filter(records []domain.Record, query, brand, category string) []domain.Record {
	query = strings.ToLower(query)
	brand = strings.ToLower(brand)
	category = strings.ToLower(category)

	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if query != "" && !strings.Contains(searchText(rec), query) {
			continue
		}
		if brand != "" && !strings.Contains(strings.ToLower(rec.Text("brandName")), brand) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(rec.Text("categoryName")), category) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func searchText(rec domain.Record) string {
	parts := make([]string, 0, len(searchableFields))
	for _, f := range searchableFields {
		parts = append(parts, rec.Text(f))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func limit(records []domain.Record, n int) []domain.Record {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}
