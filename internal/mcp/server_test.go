package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssactivewear-mcp/internal/domain"
	"ssactivewear-mcp/internal/service/product"
	"ssactivewear-mcp/internal/tools"
)

type stubFetcher struct {
	bodies map[string]string
}

func (s *stubFetcher) Fetch(_ context.Context, path string, _ url.Values) ([]byte, error) {
	if body, ok := s.bodies[path]; ok {
		return []byte(body), nil
	}
	return nil, domain.ErrNotFound
}

type response struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func newServer() *Server {
	f := &stubFetcher{bodies: map[string]string{
		"products/B00760004": `[{"sku":"B00760004","brandName":"Gildan"}]`,
	}}
	return NewServer(tools.New(product.New(f, product.Options{}, nil), nil, nil), nil)
}

func serve(t *testing.T, lines ...string) []response {
	t.Helper()
	var out bytes.Buffer
	err := newServer().Serve(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, err)

	var resps []response
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var r response
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), sc.Text())
		resps = append(resps, r)
	}
	return resps
}

func TestServe_Handshake(t *testing.T) {
	resps := serve(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":"two","method":"ping"}`,
	)
	require.Len(t, resps, 2)

	assert.Equal(t, "1", string(resps[0].ID))
	assert.JSONEq(t, `{"protocolVersion":"2024-11-05","capabilities":{"tools":{}},"serverInfo":{"name":"ss-activewear","version":"1.0.0"}}`, string(resps[0].Result))

	assert.Equal(t, `"two"`, string(resps[1].ID))
	assert.JSONEq(t, `{}`, string(resps[1].Result))
}

func TestServe_ToolsList(t *testing.T) {
	resps := serve(t, `{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)
	require.Len(t, resps, 1)

	var res struct {
		Tools []struct {
			Name        string          `json:"name"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resps[0].Result, &res))
	require.Len(t, res.Tools, 5)
	assert.Equal(t, "search_products", res.Tools[0].Name)
	assert.Contains(t, string(res.Tools[0].InputSchema), `"required":["query"]`)
}

func TestServe_ToolsCall(t *testing.T) {
	resps := serve(t,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"get_product_details","arguments":{"identifier":"B00760004"}}}`,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"nope","arguments":{}}}`,
	)
	require.Len(t, resps, 2)

	var ok tools.Result
	require.NoError(t, json.Unmarshal(resps[0].Result, &ok))
	assert.False(t, ok.IsError)
	assert.Contains(t, ok.Text(), `"brandName": "Gildan"`)

	var unknown tools.Result
	require.NoError(t, json.Unmarshal(resps[1].Result, &unknown))
	assert.True(t, unknown.IsError)
	assert.Equal(t, "Error: Unknown tool: nope", unknown.Text())
}

func TestServe_ProtocolErrors(t *testing.T) {
	resps := serve(t,
		`{not json`,
		`{"jsonrpc":"2.0","id":6,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{}}`,
		`{"jsonrpc":"2.0","id":8}`,
	)
	require.Len(t, resps, 4)

	assert.Equal(t, "null", string(resps[0].ID))
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, codeParseError, resps[0].Error.Code)

	require.NotNil(t, resps[1].Error)
	assert.Equal(t, codeMethodNotFound, resps[1].Error.Code)

	require.NotNil(t, resps[2].Error)
	assert.Equal(t, codeInvalidParams, resps[2].Error.Code)

	require.NotNil(t, resps[3].Error)
	assert.Equal(t, codeInvalidRequest, resps[3].Error.Code)
}

func TestServe_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := newServer().Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

func TestServe_StopsWhenCancelledWhileIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	defer inW.Close()
	defer outR.Close()

	done := make(chan error, 1)
	go func() { done <- newServer().Serve(ctx, inR, outW) }()

	go func() { _, _ = io.WriteString(inW, `{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n") }()
	resp, err := bufio.NewReader(outR).ReadString('\n')
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{}}`, resp)

	// stdin stays open with nothing to read
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
