package product

import (
	"strings"

	"github.com/shopspring/decimal"

	"ssactivewear-mcp/internal/domain"
)

const dozen = 12

// Price tiers.
const (
	TierCase     = "case"
	TierDozen    = "dozen"
	TierPiece    = "piece"
	TierCustomer = "customer"
)

// Money is a price rendered as a JSON number with two decimal places.
type Money struct {
	decimal.Decimal
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

type PriceQuote struct {
	SKU       string  `json:"sku"`
	BrandName string  `json:"brandName"`
	StyleName string  `json:"styleName"`
	ColorName string  `json:"colorName"`
	SizeName  string  `json:"sizeName"`
	Quantity  int     `json:"quantity"`
	Pricing   Pricing `json:"pricing"`
}

// Pricing holds the upstream price fields and the volume tier applied to the
// requested quantity. Absent prices are null.
type Pricing struct {
	MapPrice      *Money `json:"mapPrice"`
	PiecePrice    *Money `json:"piecePrice"`
	DozenPrice    *Money `json:"dozenPrice"`
	CasePrice     *Money `json:"casePrice"`
	CustomerPrice *Money `json:"customerPrice"`
	CaseQty       int64  `json:"caseQty"`
	Tier          string `json:"tier,omitempty"`
	UnitPrice     *Money `json:"unitPrice"`
	ExtendedPrice *Money `json:"extendedPrice"`
}

func quote(rec domain.Record, quantity int) PriceQuote {
	p := Pricing{
		MapPrice:      price(rec, "mapPrice"),
		PiecePrice:    price(rec, "piecePrice"),
		DozenPrice:    price(rec, "dozenPrice"),
		CasePrice:     price(rec, "casePrice"),
		CustomerPrice: price(rec, "customerPrice"),
	}
	if v, ok := rec.Get("caseQty"); ok {
		p.CaseQty, _ = v.Int64()
	}
	p.Tier, p.UnitPrice = volumeTier(p, int64(quantity))
	if p.UnitPrice != nil {
		p.ExtendedPrice = &Money{p.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))}
	}
	return PriceQuote{
		SKU:       rec.Text("sku"),
		BrandName: rec.Text("brandName"),
		StyleName: rec.Text("styleName"),
		ColorName: rec.Text("colorName"),
		SizeName:  rec.Text("sizeName"),
		Quantity:  quantity,
		Pricing:   p,
	}
}

// volumeTier picks the cheapest break the quantity qualifies for: a full
// case, then a dozen, then the piece price. customerPrice is the last resort.
func volumeTier(p Pricing, qty int64) (string, *Money) {
	switch {
	case p.CasePrice != nil && p.CaseQty > 0 && qty >= p.CaseQty:
		return TierCase, p.CasePrice
	case p.DozenPrice != nil && qty >= dozen:
		return TierDozen, p.DozenPrice
	case p.PiecePrice != nil:
		return TierPiece, p.PiecePrice
	case p.CustomerPrice != nil:
		return TierCustomer, p.CustomerPrice
	}
	return "", nil
}

// price reads a positive decimal field; zero, missing and malformed values
// are treated as absent.
func price(rec domain.Record, key string) *Money {
	v, ok := rec.Get(key)
	if !ok || !v.IsScalar() || v.IsNull() {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v.Text()))
	if err != nil || !d.IsPositive() {
		return nil
	}
	return &Money{d}
}
