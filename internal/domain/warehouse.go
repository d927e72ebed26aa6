package domain

// Warehouse is one entry of a product's `warehouses` list.
type Warehouse struct {
	Code     string `json:"warehouseAbbr"`
	Qty      int64  `json:"qty"`
	Closeout bool   `json:"closeout"`
}

// WarehouseFrom reads a `warehouses` element. Missing or malformed fields
// default to their zero values.
func WarehouseFrom(v Value) Warehouse {
	obj, ok := v.Object()
	if !ok {
		return Warehouse{}
	}
	var w Warehouse
	w.Code = obj.Text("warehouseAbbr")
	if qv, ok := obj.Get("qty"); ok {
		w.Qty, _ = qv.Int64()
	}
	if cv, ok := obj.Get("closeout"); ok {
		w.Closeout, _ = cv.BoolValue()
	}
	return w
}

// Warehouses returns the parsed `warehouses` list, or nil when the field is
// absent or not a list.
func (r Record) Warehouses() []Warehouse {
	v, ok := r.Get("warehouses")
	if !ok {
		return nil
	}
	items, ok := v.List()
	if !ok {
		return nil
	}
	out := make([]Warehouse, 0, len(items))
	for _, item := range items {
		out = append(out, WarehouseFrom(item))
	}
	return out
}
