package http

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/aterrozero-consultancy/internal/metrics"
	"github.com/nurpe/aterrozero-consultancy/internal/progress"
	"github.com/nurpe/aterrozero-consultancy/internal/service"
	"github.com/nurpe/aterrozero-consultancy/internal/store"
)

// clientsPath is where the front-end sends the consultant to pick a client.
const clientsPath = "/clients"

type Handler struct {
	svc     *service.ConsultancyService
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewHandler(svc *service.ConsultancyService, m *metrics.Metrics, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, metrics: m, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/clients", h.dashboard)
	protected.POST("/clients", h.registerClient)
	protected.GET("/clients/:id", h.getClient)
	protected.PUT("/clients/:id", h.updateClient)

	protected.GET("/current-client", h.getCurrentClient)
	protected.PUT("/current-client", h.setCurrentClient)

	protected.POST("/diagnostic/estimate", h.estimateDiagnostic)

	// Every client scoped route is also reachable under /current, which
	// resolves to the selected client.
	for _, prefix := range []string{"/clients/:id", "/current"} {
		scoped := protected.Group(prefix)
		scoped.GET("/diagnostic", h.getDiagnostic)
		scoped.POST("/diagnostic", h.submitDiagnostic)
		scoped.GET("/diagnostics", h.listDiagnostics)
		scoped.GET("/checklists", h.listChecklists)
		scoped.PUT("/checklists/:stage", h.saveChecklistStage)
		scoped.GET("/indicators", h.listIndicators)
		scoped.POST("/indicators", h.recordIndicator)
		scoped.GET("/indicators/export", h.exportIndicators)
		scoped.GET("/reports/:kind", h.generateReport)
	}
}

func (h *Handler) dashboard(c *gin.Context) {
	result, err := h.svc.Dashboard(service.DashboardQuery{
		Search: c.Query("q"),
		Status: progress.StatusFilter(strings.TrimSpace(c.Query("status"))),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) registerClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.svc.RegisterClient(c.Request.Context(), req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) getClient(c *gin.Context) {
	id, ok := h.pathClientID(c)
	if !ok {
		return
	}
	client, err := h.svc.GetClient(id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) updateClient(c *gin.Context) {
	id, ok := h.pathClientID(c)
	if !ok {
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.svc.UpdateClient(c.Request.Context(), id, req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) getCurrentClient(c *gin.Context) {
	client, err := h.svc.CurrentClient()
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) setCurrentClient(c *gin.Context) {
	var req currentClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ClientID == nil || strings.TrimSpace(*req.ClientID) == "" {
		if err := h.svc.ClearSelection(c.Request.Context()); err != nil {
			h.handleError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(*req.ClientID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
		return
	}
	client, err := h.svc.SelectClient(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) estimateDiagnostic(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	estimate, err := h.svc.EstimateDiagnostic(req.DailyWasteKg.Float(), req.MonthlyCollectionCost.Float())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (h *Handler) getDiagnostic(c *gin.Context) {
	id, ok := h.scopedClientID(c)
	if !ok {
		return
	}
	diag, err := h.svc.CurrentDiagnostic(id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, diag)
}

func (h *Handler) submitDiagnostic(c *gin.Context) {
	id, ok := h.scopedClientID(c)
	if !ok {
		return
	}
	var req diagnosticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	diag, err := h.svc.SubmitDiagnostic(c.Request.Context(), id, req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, diag)
}

func (h *Handler) listDiagnostics(c *gin.Context) {
	id, ok := h.scopedClientID(c)
	if !ok {
		return
	}
	history, err := h.svc.DiagnosticHistory(id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) listChecklists(c *gin.Context) {
	id, ok := h.scopedClientID(c)
	if !ok {
		return
	}
	stages, err := h.svc.Checklists(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	status, err := h.svc.ClientStatus(id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": stages, "status": status})
}

func (h *Handler) saveChecklistStage(c *gin.Context) {
	id, ok := h.scopedClientID(c)
	if !ok {
		return
	}
	stage, err := strconv.Atoi(c.Param("stage"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage"})
		return
	}
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update, err := req.update()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	view, err := h.svc.SaveChecklistStage(c.Request.Context(), id, stage, update)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) listIndicators(c *gin.Context) {
	id, ok := h.scopedClientID(c)
	if !ok {
		return
	}
	overview, err := h.svc.Indicators(id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) recordIndicator(c *gin.Context) {
	id, ok := h.scopedClientID(c)
	if !ok {
		return
	}
	var req indicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.svc.RecordIndicator(c.Request.Context(), id, req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) exportIndicators(c *gin.Context) {
	id, ok := h.scopedClientID(c)
	if !ok {
		return
	}
	result, err := h.svc.ExportIndicators(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.metrics.IncrReport("indicators")
	sendFile(c, result)
}

func (h *Handler) generateReport(c *gin.Context) {
	id, ok := h.scopedClientID(c)
	if !ok {
		return
	}
	kind, err := service.ParseReportKind(strings.ToLower(strings.TrimSpace(c.Param("kind"))))
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.svc.GenerateReport(c.Request.Context(), kind, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.metrics.IncrReport(string(kind))
	sendFile(c, result)
}

func sendFile(c *gin.Context, result *service.ReportResult) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": result.FileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) pathClientID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return uuid.Nil, false
	}
	return id, true
}

// scopedClientID resolves the :id path parameter, or the current selection
// on /current routes.
func (h *Handler) scopedClientID(c *gin.Context) (uuid.UUID, bool) {
	if _, ok := c.Params.Get("id"); ok {
		return h.pathClientID(c)
	}
	client, err := h.svc.CurrentClient()
	if err != nil {
		h.handleError(c, err)
		return uuid.Nil, false
	}
	return client.ID, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoCurrentClient):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "redirect": clientsPath})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUnavailable):
		h.metrics.IncrStoreUnavailable()
		h.log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable"})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
