package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ssactivewear-mcp/internal/tools"
)

const maxToolBody = 1 << 20

type toolHandlers struct {
	registry *tools.Registry
}

func (h *toolHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.registry.List()})
}

// call runs a tool with the request body as its arguments. Tool failures are
// 200 responses with isError set, like the MCP transport.
func (h *toolHandlers) call(c *gin.Context) {
	name := c.Param("name")
	if !h.registry.Has(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown tool: " + name})
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxToolBody))
	if err != nil {
		badRequest(c, "failed to read body")
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		badRequest(c, "body must be a JSON object")
		return
	}
	c.JSON(http.StatusOK, h.registry.Call(c.Request.Context(), name, body))
}
