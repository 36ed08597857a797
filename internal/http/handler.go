package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/evalex7/e-plan/internal/http/middleware"
	"github.com/evalex7/e-plan/internal/model"
	"github.com/evalex7/e-plan/internal/service"
)

type Handler struct {
	engine      *service.Engine
	docs        *service.DocumentService
	hub         *Hub
	log         zerolog.Logger
	unsubscribe func()
}

// NewHandler wires the handler and starts forwarding engine changes to the
// websocket feed. Close stops it.
func NewHandler(engine *service.Engine, docs *service.DocumentService, log zerolog.Logger) *Handler {
	h := &Handler{
		engine: engine,
		docs:   docs,
		hub:    NewHub(log),
		log:    log,
	}
	h.unsubscribe = engine.Subscribe(h.hub.Publish)
	return h
}

func (h *Handler) Close() {
	h.unsubscribe()
	h.hub.Close()
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/ws", h.hub.serve)

	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts/:id/next-maintenance", h.nextMaintenance)
	protected.GET("/objects", h.listObjects)
	protected.GET("/objects/:id", h.getObject)
	protected.GET("/engineers", h.listEngineers)
	protected.GET("/engineers/:id", h.getEngineer)
	protected.GET("/tasks", h.listTasks)
	protected.GET("/tasks/:id", h.getTask)
	protected.GET("/reports", h.listReports)
	protected.GET("/reports/:id", h.getReport)
	protected.GET("/reports/:id/pdf", h.reportPDF)
	protected.GET("/kanban", h.taskBoard)
	protected.GET("/contract-kanban", h.contractBoard)
	protected.GET("/history", h.listHistory)
	protected.GET("/export", h.exportData)
	protected.GET("/export/schedule.xlsx", h.exportSchedule)

	editor := protected.Group("/")
	editor.Use(middleware.RequireEditor())
	editor.POST("/contracts", h.createContract)
	editor.PATCH("/contracts/:id", h.updateContract)
	editor.DELETE("/contracts/:id", h.deleteContract)
	editor.POST("/contracts/:id/periods", h.addPeriod)
	editor.DELETE("/contracts/:id/periods/:periodId", h.removePeriod)
	editor.POST("/contracts/:id/periods/:periodId/adjust", h.adjustPeriod)
	editor.POST("/contracts/:id/periods/:periodId/status", h.advancePeriod)
	editor.POST("/objects", h.createObject)
	editor.PATCH("/objects/:id", h.updateObject)
	editor.DELETE("/objects/:id", h.deleteObject)
	editor.POST("/engineers", h.createEngineer)
	editor.PATCH("/engineers/:id", h.updateEngineer)
	editor.DELETE("/engineers/:id", h.deleteEngineer)
	editor.POST("/tasks", h.createTask)
	editor.POST("/tasks/regenerate", h.regenerateTasks)
	editor.PATCH("/tasks/:id", h.updateTask)
	editor.DELETE("/tasks/:id", h.deleteTask)
	editor.POST("/reports", h.createReport)
	editor.PATCH("/reports/:id", h.updateReport)
	editor.DELETE("/reports/:id", h.deleteReport)
	editor.POST("/kanban/:taskId/move", h.moveTaskCard)
	editor.POST("/contract-kanban/:contractId/move", h.moveContractCard)
	editor.POST("/history/undo", h.undo)
	editor.POST("/history/redo", h.redo)
	editor.DELETE("/history", h.clearHistory)
	editor.POST("/import", h.importData)
	editor.POST("/reset", h.resetData)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"canUndo":   h.engine.CanUndo(),
		"canRedo":   h.engine.CanRedo(),
		"wsClients": h.hub.Clients(),
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	kind := service.Kind(err)
	switch kind {
	case service.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kind})
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": kind})
	case service.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": kind})
	case service.KindPersistence:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("state changed but was not saved")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "kind": kind})
	case service.KindPermissionDenied:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "kind": kind})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "kind": kind})
	}
}

// bind decodes the JSON body into dst and answers 400 on failure.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.handleError(c, fmt.Errorf("%w: %s", service.ErrInvalidInput, err.Error()))
		return false
	}
	return true
}

func (h *Handler) principal(c *gin.Context) model.Principal {
	if principal, ok := middleware.MustPrincipal(c); ok {
		return principal
	}
	return model.LocalPrincipal()
}

func parseBool(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: invalid boolean %q", service.ErrInvalidInput, raw)
	}
	return value, nil
}

func parseCollections(raw string) ([]model.Collection, error) {
	var result []model.Collection
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		collection, err := model.ParseCollection(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", service.ErrInvalidInput, err.Error())
		}
		result = append(result, collection)
	}
	return result, nil
}

func attachment(c *gin.Context, contentType, fileName string, content []byte) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, contentType, content)
}
