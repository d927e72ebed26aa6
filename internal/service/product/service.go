package product

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"ssactivewear-mcp/internal/catalog"
	"ssactivewear-mcp/internal/domain"
)

const (
	opSearch    = "search products"
	opDetails   = "get product details"
	opInventory = "check inventory"
	opPricing   = "get pricing"
	opExport    = "download product data"

	inventoryPath = "inventory/"

	// DefaultLimit caps search results when the caller gives no limit.
	DefaultLimit = 20
)

// Options tunes result shaping.
type Options struct {
	// PreferredWarehouses orders warehouse selection in CSV exports.
	PreferredWarehouses []string
}

// Service implements the catalog operations on top of a Fetcher.
type Service struct {
	fetcher  catalog.Fetcher
	selector *catalog.Selector
	flatten  catalog.FlattenOptions
	logger   *zap.Logger
}

func New(fetcher catalog.Fetcher, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:  fetcher,
		selector: catalog.NewSelector(fetcher, logger),
		flatten:  catalog.FlattenOptions{PreferredWarehouses: opts.PreferredWarehouses},
		logger:   logger,
	}
}

type SearchInput struct {
	Query    string
	Category string
	Brand    string
	Limit    int
}

type SearchOutput struct {
	TotalResults int              `json:"totalResults"`
	Strategy     catalog.Strategy `json:"strategy"`
	Products     []domain.Record  `json:"products"`
}

func (s *Service) Search(ctx context.Context, in SearchInput) (SearchOutput, error) {
	if in.Limit <= 0 {
		in.Limit = DefaultLimit
	}
	res, err := s.selector.Search(ctx, catalog.Criteria{
		Query:    in.Query,
		Brand:    in.Brand,
		Category: in.Category,
		Limit:    in.Limit,
	})
	if err != nil {
		return SearchOutput{}, &domain.OperationError{Op: opSearch, Err: err}
	}
	return SearchOutput{
		TotalResults: len(res.Records),
		Strategy:     res.Strategy,
		Products:     res.Records,
	}, nil
}

// Details returns the first product matching identifier. Direct identifiers
// are looked up by path; anything else is treated as a style. The identifier
// is classified exactly as given.
func (s *Service) Details(ctx context.Context, identifier string) (domain.Record, error) {
	if strings.TrimSpace(identifier) == "" {
		return domain.Record{}, &domain.OperationError{Op: opDetails, Err: fmt.Errorf("%w: identifier is required", domain.ErrInvalidArgument)}
	}

	path, params := catalog.ProductsPath, url.Values{"style": {identifier}}
	if catalog.Classify(identifier) == catalog.DirectIdentifier {
		path, params = catalog.ProductsPath+url.PathEscape(identifier), nil
	}
	records, err := s.fetchRecords(ctx, path, params)
	if err != nil {
		return domain.Record{}, &domain.OperationError{Op: opDetails, Err: err}
	}
	if len(records) == 0 {
		return domain.Record{}, &domain.OperationError{Op: opDetails, Err: fmt.Errorf("%w: no product matches %q", domain.ErrNotFound, identifier)}
	}
	return records[0], nil
}

type InventoryInput struct {
	Identifiers []string
	Warehouse   string
}

type InventoryItem struct {
	SKU        string             `json:"sku"`
	Warehouses []domain.Warehouse `json:"warehouses"`
	TotalQty   int64              `json:"totalQty"`
}

type InventoryOutput struct {
	TotalResults int             `json:"totalResults"`
	Items        []InventoryItem `json:"items"`
}

func (s *Service) Inventory(ctx context.Context, in InventoryInput) (InventoryOutput, error) {
	ids, err := joinIdentifiers(in.Identifiers)
	if err != nil {
		return InventoryOutput{}, &domain.OperationError{Op: opInventory, Err: err}
	}
	warehouse := strings.TrimSpace(in.Warehouse)
	var params url.Values
	if warehouse != "" {
		params = url.Values{"warehouses": {warehouse}}
	}

	records, err := s.fetchRecords(ctx, inventoryPath+ids, params)
	if err != nil {
		return InventoryOutput{}, &domain.OperationError{Op: opInventory, Err: err}
	}

	items := make([]InventoryItem, 0, len(records))
	for _, rec := range records {
		item := InventoryItem{SKU: rec.Text("sku"), Warehouses: []domain.Warehouse{}}
		for _, w := range rec.Warehouses() {
			if warehouse != "" && !strings.EqualFold(w.Code, warehouse) {
				continue
			}
			item.Warehouses = append(item.Warehouses, w)
			item.TotalQty += w.Qty
		}
		items = append(items, item)
	}
	return InventoryOutput{TotalResults: len(items), Items: items}, nil
}

type PricingInput struct {
	Identifiers []string
	Quantity    int
}

func (s *Service) Pricing(ctx context.Context, in PricingInput) ([]PriceQuote, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, &domain.OperationError{Op: opPricing, Err: fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidArgument)}
	}
	ids, err := joinIdentifiers(in.Identifiers)
	if err != nil {
		return nil, &domain.OperationError{Op: opPricing, Err: err}
	}

	records, err := s.fetchRecords(ctx, catalog.ProductsPath+ids, nil)
	if err != nil {
		return nil, &domain.OperationError{Op: opPricing, Err: err}
	}
	quotes := make([]PriceQuote, 0, len(records))
	for _, rec := range records {
		quotes = append(quotes, quote(rec, in.Quantity))
	}
	return quotes, nil
}

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXML  = "xml"
)

type ExportInput struct {
	Format           string
	IncludeInventory bool
}

type ExportOutput struct {
	Format      string
	ContentType string
	Body        string
}

// Export downloads the upstream product page. The xml format is the upstream
// body verbatim; IncludeInventory only applies to csv and json.
func (s *Service) Export(ctx context.Context, in ExportInput) (ExportOutput, error) {
	format := strings.ToLower(strings.TrimSpace(in.Format))
	if format == "" {
		format = FormatCSV
	}

	switch format {
	case FormatXML:
		body, err := s.fetcher.Fetch(ctx, catalog.ProductsPath, url.Values{"mediatype": {"xml"}})
		if err != nil {
			return ExportOutput{}, &domain.OperationError{Op: opExport, Err: err}
		}
		return ExportOutput{Format: format, ContentType: "application/xml", Body: string(body)}, nil
	case FormatCSV, FormatJSON:
	default:
		return ExportOutput{}, &domain.OperationError{Op: opExport, Err: fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidArgument, in.Format)}
	}

	records, err := s.fetchRecords(ctx, catalog.ProductsPath, nil)
	if err != nil {
		return ExportOutput{}, &domain.OperationError{Op: opExport, Err: err}
	}
	if !in.IncludeInventory {
		for i := range records {
			records[i] = records[i].Without("warehouses")
		}
	}
	s.logger.Debug("export", zap.String("format", format), zap.Int("records", len(records)))

	if format == FormatJSON {
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return ExportOutput{}, &domain.OperationError{Op: opExport, Err: err}
		}
		return ExportOutput{Format: format, ContentType: "application/json", Body: string(out)}, nil
	}

	text, err := catalog.Render(catalog.Flatten(records, s.flatten))
	if err != nil {
		return ExportOutput{}, &domain.OperationError{Op: opExport, Err: err}
	}
	return ExportOutput{Format: format, ContentType: "text/csv", Body: text}, nil
}

func (s *Service) fetchRecords(ctx context.Context, path string, params url.Values) ([]domain.Record, error) {
	raw, err := s.fetcher.Fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return catalog.Normalize(raw)
}

// joinIdentifiers trims, drops blanks and path-escapes each identifier.
func joinIdentifiers(ids []string) (string, error) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			parts = append(parts, url.PathEscape(id))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: at least one identifier is required", domain.ErrInvalidArgument)
	}
	return strings.Join(parts, ","), nil
}
