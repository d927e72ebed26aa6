package catalog

import (
	"encoding/csv"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"ssactivewear-mcp/internal/domain"
)

// NoDataSentinel is rendered instead of an empty table.
const NoDataSentinel = "No data available"

const (
	warehousesField   = "warehouses"
	warehouseQtyCol   = "warehouses_qty"
	warehouseCodeCol  = "warehouses_warehouse"
	warehouseCloseCol = "warehouses_closeout"
)

// Row is one flattened record: ordered columns holding nil, string,
// json.Number, int64 or bool.
type Row struct {
	columns []string
	cells   map[string]any
}

func (r *Row) set(col string, v any) {
	if r.cells == nil {
		r.cells = make(map[string]any)
	}
	if _, ok := r.cells[col]; !ok {
		r.columns = append(r.columns, col)
	}
	r.cells[col] = v
}

// Columns returns the column names in record order.
func (r Row) Columns() []string {
	return slices.Clone(r.columns)
}

func (r Row) Get(col string) (any, bool) {
	v, ok := r.cells[col]
	return v, ok
}

// FlattenOptions tunes Flatten.
type FlattenOptions struct {
	// PreferredWarehouses are warehouse codes whose stock is reported in the
	// warehouses_* columns ahead of the first listed warehouse.
	PreferredWarehouses []string
}

// Flatten expands each record into one Row. Nested objects become
// <field>_<subfield> columns one level deep, a non-empty `warehouses` list
// collapses into three columns and any other list is kept as compact JSON.
func Flatten(records []domain.Record, opts FlattenOptions) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, flattenRecord(rec, opts))
	}
	return rows
}

func flattenRecord(rec domain.Record, opts FlattenOptions) Row {
	var row Row
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		switch v.Kind() {
		case domain.KindObject:
			obj, _ := v.Object()
			for _, sub := range obj.Keys() {
				sv, _ := obj.Get(sub)
				row.set(key+"_"+sub, cellValue(sv))
			}
		case domain.KindList:
			items, _ := v.List()
			if key == warehousesField && len(items) > 0 {
				w := pickWarehouse(items, opts.PreferredWarehouses)
				row.set(warehouseQtyCol, w.Qty)
				row.set(warehouseCodeCol, w.Code)
				row.set(warehouseCloseCol, w.Closeout)
				continue
			}
			row.set(key, compactJSON(v))
		default:
			row.set(key, v.Scalar())
		}
	}
	return row
}

// cellValue keeps scalars and serializes anything nested below the first level.
func cellValue(v domain.Value) any {
	if v.IsNull() || v.IsScalar() {
		return v.Scalar()
	}
	return compactJSON(v)
}

func compactJSON(v domain.Value) string {
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

func pickWarehouse(items []domain.Value, preferred []string) domain.Warehouse {
	for _, item := range items {
		w := domain.WarehouseFrom(item)
		for _, code := range preferred {
			if w.Code != "" && strings.EqualFold(w.Code, code) {
				return w
			}
		}
	}
	return domain.WarehouseFrom(items[0])
}

// Render writes rows as CSV text: a header from the first row's columns and
// one line per row. Later rows are projected onto that header, so a column
// only present in later records is dropped and a missing one renders empty.
func Render(rows []Row) (string, error) {
	if len(rows) == 0 {
		return NoDataSentinel, nil
	}

	header := rows[0].Columns()
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return "", err
	}
	line := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			v, _ := row.Get(col)
			line[i] = FormatCell(v)
		}
		if err := w.Write(line); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

// FormatCell renders a flattened cell as CSV text; nil becomes "".
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
