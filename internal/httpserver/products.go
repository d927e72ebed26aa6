package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ssactivewear-mcp/internal/domain"
	"ssactivewear-mcp/internal/service/product"
	"ssactivewear-mcp/internal/tools"
)

type catalogHandlers struct {
	catalog tools.Catalog
	logger  *zap.Logger
}

func (h *catalogHandlers) search(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	out, err := h.catalog.Search(c.Request.Context(), product.SearchInput{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Limit:    limit,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *catalogHandlers) details(c *gin.Context) {
	rec, err := h.catalog.Details(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *catalogHandlers) inventory(c *gin.Context) {
	out, err := h.catalog.Inventory(c.Request.Context(), product.InventoryInput{
		Identifiers: listQuery(c, "ids"),
		Warehouse:   c.Query("warehouse"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *catalogHandlers) pricing(c *gin.Context) {
	qty, ok := intQuery(c, "quantity", 1)
	if !ok {
		return
	}
	quotes, err := h.catalog.Pricing(c.Request.Context(), product.PricingInput{
		Identifiers: listQuery(c, "ids"),
		Quantity:    qty,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *catalogHandlers) export(c *gin.Context) {
	include := true
	if v := c.Query("includeInventory"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "includeInventory must be a boolean")
			return
		}
		include = b
	}
	out, err := h.catalog.Export(c.Request.Context(), product.ExportInput{
		Format:           c.DefaultQuery("format", product.FormatCSV),
		IncludeInventory: include,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, out.ContentType+"; charset=utf-8", []byte(out.Body))
}

func (h *catalogHandlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("catalog request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	body := gin.H{"error": err.Error()}
	if hint := domain.Hint(err); hint != "" {
		body["hint"] = hint
	}
	c.JSON(status, body)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var upstream *domain.UpstreamError
	var reported *domain.ReportedErrors
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingCredentials), errors.Is(err, domain.ErrNetworkUnreachable):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream), errors.As(err, &reported), errors.Is(err, domain.ErrInvalidResponseShape):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		badRequest(c, key+" must be an integer")
		return 0, false
	}
	return n, true
}

// listQuery accepts both ?ids=a,b and ?ids=a&ids=b.
func listQuery(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
