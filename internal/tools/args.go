package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ssactivewear-mcp/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type searchArgs struct {
	Query    string `json:"query" validate:"required"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Limit    int    `json:"limit" validate:"gte=0"`
}

type detailsArgs struct {
	Identifier string `json:"identifier" validate:"required"`
	StyleID    string `json:"styleId"`
}

func (a *detailsArgs) normalize() {
	if strings.TrimSpace(a.Identifier) == "" {
		a.Identifier = a.StyleID
	}
	if strings.TrimSpace(a.Identifier) == "" {
		a.Identifier = ""
	}
}

type inventoryArgs struct {
	Identifiers []string `json:"identifiers" validate:"required,min=1"`
	StyleIDs    []string `json:"styleIds"`
	Warehouse   string   `json:"warehouse"`
}

func (a *inventoryArgs) normalize() {
	if len(a.Identifiers) == 0 {
		a.Identifiers = a.StyleIDs
	}
}

type pricingArgs struct {
	Identifiers []string `json:"identifiers" validate:"required,min=1"`
	StyleIDs    []string `json:"styleIds"`
	Quantity    int      `json:"quantity" validate:"gte=0"`
}

func (a *pricingArgs) normalize() {
	if len(a.Identifiers) == 0 {
		a.Identifiers = a.StyleIDs
	}
	if a.Quantity == 0 {
		a.Quantity = 1
	}
}

type exportArgs struct {
	Format           string `json:"format" validate:"omitempty,oneof=csv xml json"`
	IncludeInventory *bool  `json:"includeInventory"`
}

func (a *exportArgs) normalize() {
	a.Format = strings.ToLower(strings.TrimSpace(a.Format))
	if a.Format == "" {
		a.Format = "csv"
	}
	if a.IncludeInventory == nil {
		include := true
		a.IncludeInventory = &include
	}
}

type normalizer interface {
	normalize()
}

// decodeArgs unmarshals raw into dst, applies aliases and defaults, then
// validates. Missing or null arguments decode as an empty object.
func decodeArgs(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: malformed arguments: %v", domain.ErrInvalidArgument, err)
		}
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s item(s)", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
