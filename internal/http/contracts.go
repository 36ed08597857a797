package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/service"
)

func (h *Handler) listContracts(c *gin.Context) {
	includeArchived, err := parseBool(c.Query("includeArchived"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	contracts := h.engine.Contracts(service.ContractFilter{
		Status:          model.ContractStatus(strings.TrimSpace(c.Query("status"))),
		IncludeArchived: includeArchived,
	})
	c.JSON(http.StatusOK, gin.H{"data": contracts})
}

func (h *Handler) getContract(c *gin.Context) {
	contract, err := h.engine.Contract(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": contract})
}

func (h *Handler) nextMaintenance(c *gin.Context) {
	contract, err := h.engine.Contract(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.engine.NextMaintenanceDate(contract)})
}

func (h *Handler) createContract(c *gin.Context) {
	var req model.Contract
	if !h.bind(c, &req) {
		return
	}
	created, err := h.engine.AddContract(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *Handler) updateContract(c *gin.Context) {
	var patch service.ContractPatch
	if !h.bind(c, &patch) {
		return
	}
	updated, err := h.engine.UpdateContract(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *Handler) deleteContract(c *gin.Context) {
	if err := h.engine.RemoveContract(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addPeriod(c *gin.Context) {
	var req model.MaintenancePeriod
	if !h.bind(c, &req) {
		return
	}
	period, err := h.engine.AddMaintenancePeriod(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": period})
}

func (h *Handler) removePeriod(c *gin.Context) {
	if err := h.engine.RemoveMaintenancePeriod(c.Request.Context(), c.Param("id"), c.Param("periodId")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type adjustPeriodRequest struct {
	StartDate  model.Date `json:"startDate"`
	EndDate    model.Date `json:"endDate"`
	AdjustedBy string     `json:"adjustedBy"`
}

func (h *Handler) adjustPeriod(c *gin.Context) {
	var req adjustPeriodRequest
	if !h.bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.AdjustedBy) == "" {
		req.AdjustedBy = h.principal(c).Name
	}
	period, err := h.engine.AdjustMaintenancePeriod(c.Request.Context(),
		c.Param("id"), c.Param("periodId"), req.StartDate, req.EndDate, req.AdjustedBy)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": period})
}

type periodStatusRequest struct {
	Status model.PeriodStatus `json:"status" binding:"required"`
}

func (h *Handler) advancePeriod(c *gin.Context) {
	var req periodStatusRequest
	if !h.bind(c, &req) {
		return
	}
	period, err := h.engine.AdvanceMaintenancePeriod(c.Request.Context(), c.Param("id"), c.Param("periodId"), req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": period})
}

func (h *Handler) contractBoard(c *gin.Context) {
	board, err := h.engine.ContractBoard(model.ContractColumn(strings.TrimSpace(c.Query("column"))))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": board})
}

type moveRequest struct {
	Column string `json:"column" binding:"required"`
}

func (h *Handler) moveContractCard(c *gin.Context) {
	var req moveRequest
	if !h.bind(c, &req) {
		return
	}
	card, err := h.engine.MoveContractKanbanTask(c.Request.Context(), c.Param("contractId"), model.ContractColumn(req.Column))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": card})
}
