package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/service"
)

func (h *Handler) listObjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.engine.Objects()})
}

func (h *Handler) getObject(c *gin.Context) {
	object, err := h.engine.Object(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": object})
}

func (h *Handler) createObject(c *gin.Context) {
	var req model.ServiceObject
	if !h.bind(c, &req) {
		return
	}
	created, err := h.engine.AddObject(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *Handler) updateObject(c *gin.Context) {
	var patch service.ObjectPatch
	if !h.bind(c, &patch) {
		return
	}
	updated, err := h.engine.UpdateObject(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *Handler) deleteObject(c *gin.Context) {
	if err := h.engine.RemoveObject(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listEngineers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.engine.Engineers()})
}

func (h *Handler) getEngineer(c *gin.Context) {
	engineer, err := h.engine.Engineer(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": engineer})
}

func (h *Handler) createEngineer(c *gin.Context) {
	var req model.ServiceEngineer
	if !h.bind(c, &req) {
		return
	}
	created, err := h.engine.AddEngineer(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (h *Handler) updateEngineer(c *gin.Context) {
	var patch service.EngineerPatch
	if !h.bind(c, &patch) {
		return
	}
	updated, err := h.engine.UpdateEngineer(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (h *Handler) deleteEngineer(c *gin.Context) {
	if err := h.engine.RemoveEngineer(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
