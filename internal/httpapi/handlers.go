package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leengari/mdtable/internal/coerce"
	"github.com/leengari/mdtable/internal/domain/data"
	"github.com/leengari/mdtable/internal/domain/schema"
	"github.com/leengari/mdtable/internal/engine"
	"github.com/leengari/mdtable/internal/markdown"
	"github.com/leengari/mdtable/internal/render"
)

// Handler serves one loaded table
type Handler struct {
	eng      *engine.Engine
	document string
	table    *schema.Table
	report   []coerce.Inference
}

// NewHandler creates a Handler for a table loaded from document
func NewHandler(eng *engine.Engine, document string, table *schema.Table, report []coerce.Inference) *Handler {
	return &Handler{eng: eng, document: document, table: table, report: report}
}

// QueryRequest is the body of POST /query
type QueryRequest struct {
	Query  string `json:"query" binding:"required"`
	Format string `json:"format" binding:"omitempty,oneof=json markdown html text"`
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rows": h.table.Len()})
}

// Table returns the whole table in the format given by ?format=
func (h *Handler) Table(c *gin.Context) {
	h.write(c, h.table, engine.NewResult(h.table), c.DefaultQuery("format", "json"))
}

// Query runs a FILTER statement
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, engine.ErrorResult(err))
		return
	}

	out, err := h.eng.Run(h.table, req.Query)
	if err != nil {
		c.JSON(http.StatusBadRequest, engine.ErrorResult(err))
		return
	}

	res := engine.NewResult(out)
	res.Message = formatCount(out.Len(), h.table.Len())
	format := req.Format
	if format == "" {
		format = "json"
	}
	h.write(c, out, res, format)
}

// Row returns one row by index key
func (h *Handler) Row(c *gin.Context) {
	key := c.Param("key")
	row, ok := h.table.Row(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "row not found: " + key})
		return
	}
	row[h.table.IndexColumn()] = data.Text(key)
	c.JSON(http.StatusOK, row)
}

// Sections lists the document's headings
func (h *Handler) Sections(c *gin.Context) {
	c.JSON(http.StatusOK, markdown.Headlines(h.document))
}

// Schema returns the column types and the inference report
func (h *Handler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"index":     h.table.IndexColumn(),
		"columns":   h.table.Schema(),
		"inference": h.report,
	})
}

// write renders t as format; res is used for json
func (h *Handler) write(c *gin.Context, t *schema.Table, res *engine.Result, format string) {
	switch format {
	case "json":
		c.JSON(http.StatusOK, res)
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(render.Markdown(t)))
	case "html":
		var buf bytes.Buffer
		if err := render.HTML(&buf, t); err != nil {
			c.JSON(http.StatusInternalServerError, engine.ErrorResult(err))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	case "text":
		var buf bytes.Buffer
		render.Result(&buf, res)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format: " + format})
	}
}
