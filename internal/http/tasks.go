package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/service"
)

func (h *Handler) listTasks(c *gin.Context) {
	tasks := h.engine.Tasks(service.TaskFilter{
		ContractID: strings.TrimSpace(c.Query("contractId")),
		EngineerID: strings.TrimSpace(c.Query("engineerId")),
		Status:     model.TaskStatus(strings.TrimSpace(c.Query("status"))),
	})
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.engine.Task(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (h *Handler) createTask(c *gin.Context) {
	var req model.MaintenanceTask
	if !h.bind(c, &req) {
		return
	}
	created, err := h.engine.AddTask(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *Handler) updateTask(c *gin.Context) {
	var patch service.TaskPatch
	if !h.bind(c, &patch) {
		return
	}
	updated, err := h.engine.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.engine.RemoveTask(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) regenerateTasks(c *gin.Context) {
	result, err := h.engine.RegenerateAllTasks(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *Handler) taskBoard(c *gin.Context) {
	board, err := h.engine.TaskBoard(model.TaskColumn(strings.TrimSpace(c.Query("column"))))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": board})
}

func (h *Handler) moveTaskCard(c *gin.Context) {
	var req moveRequest
	if !h.bind(c, &req) {
		return
	}
	card, err := h.engine.MoveKanbanTask(c.Request.Context(), c.Param("taskId"), model.TaskColumn(req.Column))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": card})
}

func (h *Handler) listReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.engine.Reports(strings.TrimSpace(c.Query("contractId")))})
}

func (h *Handler) getReport(c *gin.Context) {
	report, err := h.engine.Report(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (h *Handler) createReport(c *gin.Context) {
	var req model.MaintenanceReport
	if !h.bind(c, &req) {
		return
	}
	created, err := h.engine.AddReport(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *Handler) updateReport(c *gin.Context) {
	var patch service.ReportPatch
	if !h.bind(c, &patch) {
		return
	}
	updated, err := h.engine.UpdateReport(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *Handler) deleteReport(c *gin.Context) {
	if err := h.engine.RemoveReport(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) reportPDF(c *gin.Context) {
	result, err := h.docs.ReportPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, "application/pdf", result.FileName, result.Content)
}
