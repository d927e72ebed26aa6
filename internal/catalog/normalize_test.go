package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssactivewear-mcp/internal/domain"
)

func TestNormalize_EmptyAndNull(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", " null\n"} {
		records, err := Normalize([]byte(raw))
		require.NoError(t, err, "raw=%q", raw)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	}
}

func TestNormalize_SingleObject(t *testing.T) {
	records, err := Normalize([]byte(`{"sku":"X"}`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "X", records[0].Text("sku"))
}

func TestNormalize_ArrayPassesThrough(t *testing.T) {
	records, err := Normalize([]byte(`[{"a":1},{"b":2}]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"a"}, records[0].Keys())
	assert.Equal(t, []string{"b"}, records[1].Keys())
	assert.Equal(t, "2", records[1].Text("b"))
}

func TestNormalize_ScalarIsInvalidShape(t *testing.T) {
	for _, raw := range []string{`"text"`, `42`, `true`, `[1,2]`, `{"a":`} {
		_, err := Normalize([]byte(raw))
		assert.ErrorIs(t, err, domain.ErrInvalidResponseShape, "raw=%q", raw)
	}
}

func TestNormalize_ReportedErrors(t *testing.T) {
	_, err := Normalize([]byte(`{"errors":[{"message":"Style not found"},{"message":"Bad request"}]}`))
	require.Error(t, err)

	var reported *domain.ReportedErrors
	require.True(t, errors.As(err, &reported))
	assert.Equal(t, []string{"Style not found", "Bad request"}, reported.Messages)
	assert.Equal(t, "Style not found, Bad request", err.Error())
}

func TestNormalize_EmptyErrorsArrayIsData(t *testing.T) {
	records, err := Normalize([]byte(`{"sku":"X","errors":[]}`))
	require.NoError(t, err)
	require.Len(t, records, 1)
}
