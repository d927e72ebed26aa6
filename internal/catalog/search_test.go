package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssactivewear-mcp/internal/domain"
)

type fetchCall struct {
	path   string
	params url.Values
}

// stubFetcher answers by path and records every call.
type stubFetcher struct {
	bodies map[string]string
	errs   map[string]error
	calls  []fetchCall
}

func (s *stubFetcher) Fetch(_ context.Context, path string, params url.Values) ([]byte, error) {
	s.calls = append(s.calls, fetchCall{path: path, params: params})
	if err, ok := s.errs[path]; ok {
		return nil, err
	}
	if body, ok := s.bodies[path]; ok {
		return []byte(body), nil
	}
	return nil, domain.ErrNotFound
}

func catalogPage(n int) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{"sku":"G2000%02d","brandName":"Gildan","styleName":"2000","colorName":"Black","categoryName":"T-Shirts"}`, i))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestSearch_DirectHit(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{
		"products/B00760004": `[{"sku":"B00760004","brandName":"Gildan"}]`,
	}}

	res, err := NewSelector(f, nil).Search(context.Background(), Criteria{Query: "B00760004", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, StrategyDirect, res.Strategy)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "B00760004", res.Records[0].Text("sku"))
	require.Len(t, f.calls, 1)
}

func TestSearch_DirectNotFoundFallsThroughToFiltered(t *testing.T) {
	f := &stubFetcher{
		errs: map[string]error{"products/B00760004": fmt.Errorf("fetch: %w", domain.ErrNotFound)},
		bodies: map[string]string{"products/": `[
			{"sku":"A1","styleName":"Other"},
			{"sku":"b00760004","styleName":"Heavy Cotton"}
		]`},
	}

	res, err := NewSelector(f, nil).Search(context.Background(), Criteria{Query: "B00760004", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, StrategyFiltered, res.Strategy)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "b00760004", res.Records[0].Text("sku"))

	require.Len(t, f.calls, 2)
	assert.Equal(t, "products/B00760004", f.calls[0].path)
	assert.Equal(t, "products/", f.calls[1].path)
	assert.Empty(t, f.calls[1].params)
}

func TestSearch_DirectEmptyFallsThrough(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{
		"products/G500": `[]`,
		"products/":     `[{"sku":"G500XL","brandName":"Gildan"}]`,
	}}

	res, err := NewSelector(f, nil).Search(context.Background(), Criteria{Query: "G500"})
	require.NoError(t, err)
	assert.Equal(t, StrategyFiltered, res.Strategy)
	assert.Len(t, res.Records, 1)
}

func TestSearch_StyleFailurePropagates(t *testing.T) {
	upstream := &domain.UpstreamError{Status: 500, Message: "Internal Server Error"}
	f := &stubFetcher{errs: map[string]error{"products/": upstream}}

	_, err := NewSelector(f, nil).Search(context.Background(), Criteria{Query: "2000"})
	require.Error(t, err)

	var got *domain.UpstreamError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 500, got.Status)

	require.Len(t, f.calls, 1)
	assert.Equal(t, "2000", f.calls[0].params.Get("style"))
}

func TestSearch_StyleAppliesBrandAndLimit(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"products/": `[
		{"sku":"S1","brandName":"Gildan","categoryName":"Tees"},
		{"sku":"S2","brandName":"Bella + Canvas","categoryName":"Tees"},
		{"sku":"S3","brandName":"gildan","categoryName":"Fleece"},
		{"sku":"S4","brandName":"GILDAN","categoryName":"Tees"}
	]`}}

	res, err := NewSelector(f, nil).Search(context.Background(), Criteria{Query: "2000", Brand: "Gild", Category: "tee", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, StrategyStyle, res.Strategy)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "S1", res.Records[0].Text("sku"))
}

func TestSearch_FilteredLimitKeepsUpstreamOrder(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"products/": catalogPage(30)}}

	res, err := NewSelector(f, nil).Search(context.Background(), Criteria{Query: "heavy black", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, res.Records, "query must match as one substring")

	res, err = NewSelector(f, nil).Search(context.Background(), Criteria{Query: "black tee", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	res, err = NewSelector(f, nil).Search(context.Background(), Criteria{Query: "Gildan", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, StrategyFiltered, res.Strategy)
	require.Len(t, res.Records, 20)
	for i, rec := range res.Records {
		assert.Equal(t, fmt.Sprintf("G2000%02d", i), rec.Text("sku"))
	}
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	f := &stubFetcher{bodies: map[string]string{"products/": catalogPage(5)}}

	res, err := NewSelector(f, nil).Search(context.Background(), Criteria{})
	require.NoError(t, err)
	assert.Len(t, res.Records, 5)
}

func TestSearch_FilteredFailurePropagates(t *testing.T) {
	f := &stubFetcher{errs: map[string]error{"products/": domain.ErrUnauthorized}}

	_, err := NewSelector(f, nil).Search(context.Background(), Criteria{Query: "hoodie"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSearch_DirectFailureThenFilteredFailure(t *testing.T) {
	f := &stubFetcher{errs: map[string]error{
		"products/B1": domain.ErrNetworkUnreachable,
		"products/":   domain.ErrForbidden,
	}}

	_, err := NewSelector(f, nil).Search(context.Background(), Criteria{Query: "B1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Len(t, f.calls, 2)
}
