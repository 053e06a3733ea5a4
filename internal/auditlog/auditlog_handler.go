package auditlog

import (
	"net/http"
	"strconv"

	"marketflow/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	attendance *Ledger
	content    *Ledger
}

func NewHandler(attendance, content *Ledger) *Handler {
	return &Handler{attendance: attendance, content: content}
}

func (h *Handler) GetAttendanceLog(c *gin.Context) {
	h.writeEntries(c, h.attendance)
}

func (h *Handler) GetContentLog(c *gin.Context) {
	h.writeEntries(c, h.content)
}

// AppendContentEntry is the append entry point for the content-marketing
// modules, which live outside this service but share its content ledger.
func (h *Handler) AppendContentEntry(c *gin.Context) {
	var req AppendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	entry := h.content.Append(
		c.GetString("full_name"),
		c.GetString("role"),
		req.Action,
		req.Detail,
	)
	response.Success(c, http.StatusCreated, entry, nil)
}

func (h *Handler) writeEntries(c *gin.Context, ledger *Ledger) {
	entries := ledger.Entries()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 {
		pageSize = 20
	}

	total := int64(len(entries))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(entries) {
		start = len(entries)
	}
	if end > len(entries) {
		end = len(entries)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, entries[start:end], &meta)
}
