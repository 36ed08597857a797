package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evalex7/e-plan/internal/backup"
	"github.com/evalex7/e-plan/internal/history"
	"github.com/evalex7/e-plan/internal/service"
)

const maxImportSize = 32 << 20

func (h *Handler) listHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"undo":    h.engine.UndoEntries(),
		"redo":    h.engine.RedoEntries(),
		"canUndo": h.engine.CanUndo(),
		"canRedo": h.engine.CanRedo(),
	}})
}

func (h *Handler) undo(c *gin.Context) {
	h.step(c, "undo", h.engine.Undo)
}

func (h *Handler) redo(c *gin.Context) {
	h.step(c, "redo", h.engine.Redo)
}

func (h *Handler) step(c *gin.Context, action string, fn func(context.Context) (history.Entry, bool, error)) {
	entry, ok, err := fn(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !ok {
		h.handleError(c, fmt.Errorf("%w: nothing to %s", service.ErrConflict, action))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (h *Handler) clearHistory(c *gin.Context) {
	h.engine.ClearHistory()
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportData(c *gin.Context) {
	collections, err := parseCollections(c.Query("collections"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	var content []byte
	if len(collections) == 0 {
		content, err = h.engine.ExportData()
	} else {
		content, err = h.engine.ExportSelectedData(collections...)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, "application/json", backup.FileName(time.Now()), content)
}

func (h *Handler) importData(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize+1))
	if err != nil {
		h.handleError(c, fmt.Errorf("%w: read body: %s", service.ErrInvalidInput, err.Error()))
		return
	}
	if len(data) > maxImportSize {
		h.handleError(c, fmt.Errorf("%w: backup is larger than %d bytes", service.ErrInvalidInput, maxImportSize))
		return
	}
	collections, err := h.engine.ImportData(c.Request.Context(), data)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"collections": collections}})
}

func (h *Handler) resetData(c *gin.Context) {
	if err := h.engine.ResetData(c.Request.Context()); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportSchedule(c *gin.Context) {
	result, err := h.docs.ScheduleWorkbook(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.FileName, result.Content)
}
