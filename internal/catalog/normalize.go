package catalog

import (
	"bytes"
	"fmt"

	"ssactivewear-mcp/internal/domain"
)

// Normalize turns an upstream payload into a list of records: null or an
// empty body yields none, an object yields one and an array of objects is
// passed through. An object carrying an `errors` array is reported as
// *domain.ReportedErrors instead of data.
func Normalize(raw []byte) ([]domain.Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []domain.Record{}, nil
	}

	v, err := domain.ParseValue(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponseShape, err)
	}

	switch v.Kind() {
	case domain.KindNull:
		return []domain.Record{}, nil
	case domain.KindObject:
		obj, _ := v.Object()
		if err := reportedErrors(obj); err != nil {
			return nil, err
		}
		return []domain.Record{obj}, nil
	case domain.KindList:
		items, _ := v.List()
		records := make([]domain.Record, 0, len(items))
		for i, item := range items {
			obj, ok := item.Object()
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %s, want object", domain.ErrInvalidResponseShape, i, item.Kind())
			}
			records = append(records, obj)
		}
		return records, nil
	}
	return nil, fmt.Errorf("%w: top-level %s", domain.ErrInvalidResponseShape, v.Kind())
}

// reportedErrors returns the upstream `errors` array as an error, if present.
func reportedErrors(obj domain.Record) error {
	v, ok := obj.Get("errors")
	if !ok {
		return nil
	}
	items, ok := v.List()
	if !ok || len(items) == 0 {
		return nil
	}
	messages := make([]string, 0, len(items))
	for _, item := range items {
		if e, ok := item.Object(); ok {
			messages = append(messages, e.Text("message"))
			continue
		}
		messages = append(messages, item.Text())
	}
	return &domain.ReportedErrors{Messages: messages}
}
