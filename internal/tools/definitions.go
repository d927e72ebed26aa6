package tools

import "encoding/json"

// Tool names.
const (
	SearchProducts      = "search_products"
	GetProductDetails   = "get_product_details"
	CheckInventory      = "check_inventory"
	GetPricing          = "get_pricing"
	DownloadProductData = "download_product_data"
)

// Definition is a tool as advertised by tools/list.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

var definitions = []Definition{
	{
		Name:        SearchProducts,
		Description: "Search S&S Activewear products by SKU, GTIN, style number, keyword, brand, or category",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "SKU, GTIN, style number or keyword"},
				"category": {"type": "string", "description": "Product category filter (optional)"},
				"brand": {"type": "string", "description": "Brand filter (optional)"},
				"limit": {"type": "number", "description": "Maximum number of results (default: 20)", "default": 20}
			},
			"required": ["query"]
		}`),
	},
	{
		Name:        GetProductDetails,
		Description: "Get detailed information about a specific product including inventory",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"identifier": {"type": "string", "description": "SKU, GTIN, style ID or style number"},
				"styleId": {"type": "string", "description": "Deprecated alias of identifier"}
			},
			"anyOf": [{"required": ["identifier"]}, {"required": ["styleId"]}]
		}`),
	},
	{
		Name:        CheckInventory,
		Description: "Check real-time warehouse inventory for specific products",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"identifiers": {"type": "array", "items": {"type": "string"}, "description": "SKUs, GTINs or style IDs"},
				"styleIds": {"type": "array", "items": {"type": "string"}, "description": "Deprecated alias of identifiers"},
				"warehouse": {"type": "string", "description": "Specific warehouse code (optional)"}
			},
			"anyOf": [{"required": ["identifiers"]}, {"required": ["styleIds"]}]
		}`),
	},
	{
		Name:        GetPricing,
		Description: "Get pricing information for products, including the volume tier for a quantity",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"identifiers": {"type": "array", "items": {"type": "string"}, "description": "SKUs, GTINs or style IDs"},
				"styleIds": {"type": "array", "items": {"type": "string"}, "description": "Deprecated alias of identifiers"},
				"quantity": {"type": "number", "description": "Quantity for volume pricing (default: 1)", "default": 1}
			},
			"anyOf": [{"required": ["identifiers"]}, {"required": ["styleIds"]}]
		}`),
	},
	{
		Name:        DownloadProductData,
		Description: "Download product catalog data in CSV, XML or JSON format",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"format": {"type": "string", "enum": ["csv", "xml", "json"], "description": "Download format", "default": "csv"},
				"includeInventory": {"type": "boolean", "description": "Include real-time inventory data", "default": true}
			}
		}`),
	},
}
