package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dlemos/procurement-service/internal/engine"
	"github.com/dlemos/procurement-service/internal/http/middleware"
	"github.com/dlemos/procurement-service/internal/model"
	"github.com/dlemos/procurement-service/internal/service"
)

const maxAttachmentSize = 10 << 20

type Handler struct {
	demands *service.DemandService
	log     zerolog.Logger
}

func NewHandler(demands *service.DemandService, log zerolog.Logger) *Handler {
	return &Handler{demands: demands, log: log}
}

func (h *Handler) Register(router gin.IRouter) {
	router.POST("/demands", h.createDemand)
	router.GET("/demands", h.listDemands)
	router.GET("/demands/:id", h.getDemand)
	router.PUT("/demands/:id/items", h.updateItems)

	router.POST("/demands/:id/submit", h.action(engine.ActionSubmitForReview))
	router.POST("/demands/:id/approve", h.action(engine.ActionApprove))
	router.POST("/demands/:id/reject", h.action(engine.ActionReject))
	router.POST("/demands/:id/close", h.action(engine.ActionCloseBidding))
	router.POST("/demands/:id/finalize", h.action(engine.ActionFinalize))
	router.POST("/demands/:id/cancel", h.action(engine.ActionCancel))
	router.POST("/demands/:id/homologate", h.homologate)

	router.POST("/demands/:id/proposals", h.submitProposal)
	router.GET("/demands/:id/analysis", h.analysis)
	router.GET("/demands/:id/analysis/export", h.exportAnalysis)
	router.POST("/demands/:id/justification/suggest", h.suggestJustification)
	router.GET("/demands/:id/award/term", h.exportAwardTerm)

	router.GET("/price-history", h.priceHistory)

	router.POST("/demands/:id/attachments", h.uploadAttachment)
	router.GET("/demands/:id/attachments/:attachmentID/url", h.attachmentURL)
}

type itemRequest struct {
	Description   string  `json:"description" binding:"required"`
	Unit          string  `json:"unit" binding:"required"`
	Quantity      int     `json:"quantity" binding:"required"`
	GroupID       string  `json:"group_id"`
	CatalogItemID *string `json:"catalog_item_id"`
}

type createDemandRequest struct {
	Title       string        `json:"title" binding:"required"`
	Department  string        `json:"department" binding:"required"`
	Type        string        `json:"type" binding:"required"`
	Priority    string        `json:"priority" binding:"required"`
	Description string        `json:"description"`
	Items       []itemRequest `json:"items"`
}

func (h *Handler) createDemand(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := parseItems(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	demand, err := h.demands.CreateDemand(c.Request.Context(), service.CreateDemandInput{
		Title:       req.Title,
		Department:  req.Department,
		Type:        model.DemandType(strings.ToUpper(req.Type)),
		Priority:    model.DemandPriority(strings.ToUpper(req.Priority)),
		Description: req.Description,
		Items:       items,
		Principal:   principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, demandResponseFrom(demand))
}

func parseItems(reqs []itemRequest) ([]service.ItemInput, error) {
	items := make([]service.ItemInput, 0, len(reqs))
	for _, req := range reqs {
		item := service.ItemInput{
			Description: req.Description,
			Unit:        req.Unit,
			Quantity:    req.Quantity,
			GroupID:     req.GroupID,
		}
		if req.CatalogItemID != nil {
			id, err := uuid.Parse(*req.CatalogItemID)
			if err != nil {
				return nil, errors.New("invalid catalog_item_id")
			}
			item.CatalogItemID = &id
		}
		items = append(items, item)
	}
	return items, nil
}

func (h *Handler) listDemands(c *gin.Context) {
	var statusFilter *model.DemandStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.DemandStatus(strings.ToUpper(raw))
		statusFilter = &status
	}

	demands, err := h.demands.ListDemands(c.Request.Context(), statusFilter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	out := make([]demandResponse, 0, len(demands))
	for i := range demands {
		out = append(out, demandResponseFrom(&demands[i]))
	}
	c.JSON(http.StatusOK, gin.H{"demands": out})
}

func (h *Handler) getDemand(c *gin.Context) {
	id, ok := h.demandID(c)
	if !ok {
		return
	}
	demand, err := h.demands.GetDemand(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, demandResponseFrom(demand))
}

type updateItemsRequest struct {
	Items []itemRequest `json:"items" binding:"required"`
}

func (h *Handler) updateItems(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.demandID(c)
	if !ok {
		return
	}

	var req updateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := parseItems(req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	demand, err := h.demands.UpdateItems(c.Request.Context(), id, items, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, demandResponseFrom(demand))
}

type actionRequest struct {
	Reason       string `json:"reason"`
	Observations string `json:"observations"`
}

// action builds a handler for the evidence-only lifecycle endpoints.
// Homologation has its own handler because it carries a selection.
func (h *Handler) action(action engine.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.MustPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
			return
		}
		id, ok := h.demandID(c)
		if !ok {
			return
		}

		var req actionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		demand, err := h.demands.Transition(c.Request.Context(), id, action, engine.Evidence{
			Reason:       req.Reason,
			Observations: req.Observations,
		}, principal)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, demandResponseFrom(demand))
	}
}

type selectionRequest struct {
	Mode        string            `json:"mode" binding:"required"`
	ProposalID  *string           `json:"proposal_id"`
	ItemWinners map[string]string `json:"item_winners"`
}

func (r selectionRequest) toSelection() (engine.Selection, error) {
	sel := engine.Selection{Mode: model.AwardMode(strings.ToUpper(r.Mode))}
	if r.ProposalID != nil {
		id, err := uuid.Parse(*r.ProposalID)
		if err != nil {
			return engine.Selection{}, errors.New("invalid proposal_id")
		}
		sel.ProposalID = id
	}
	if len(r.ItemWinners) > 0 {
		sel.ItemWinners = make(map[uuid.UUID]uuid.UUID, len(r.ItemWinners))
		for rawItem, rawProposal := range r.ItemWinners {
			itemID, err := uuid.Parse(rawItem)
			if err != nil {
				return engine.Selection{}, errors.New("invalid item id in item_winners")
			}
			proposalID, err := uuid.Parse(rawProposal)
			if err != nil {
				return engine.Selection{}, errors.New("invalid proposal id in item_winners")
			}
			sel.ItemWinners[itemID] = proposalID
		}
	}
	return sel, nil
}

type homologateRequest struct {
	Selection     selectionRequest `json:"selection" binding:"required"`
	Justification string           `json:"justification"`
}

func (h *Handler) homologate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.demandID(c)
	if !ok {
		return
	}

	var req homologateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sel, err := req.Selection.toSelection()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	demand, err := h.demands.Homologate(c.Request.Context(), service.HomologationInput{
		DemandID:      id,
		Selection:     sel,
		Justification: req.Justification,
		Principal:     principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, demandResponseFrom(demand))
}

type proposalLineRequest struct {
	ItemID    string  `json:"item_id" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
	Brand     *string `json:"brand"`
	Declined  bool    `json:"declined"`
}

type submitProposalRequest struct {
	SupplierID   string                `json:"supplier_id" binding:"required"`
	SupplierName string                `json:"supplier_name" binding:"required"`
	DeliveryTime string                `json:"delivery_time"`
	Declined     bool                  `json:"declined"`
	Lines        []proposalLineRequest `json:"lines"`
	Observations *string               `json:"observations"`
}

func (h *Handler) submitProposal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.demandID(c)
	if !ok {
		return
	}

	var req submitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier_id"})
		return
	}

	lines := make([]service.ProposalLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item_id"})
			return
		}
		lines = append(lines, service.ProposalLineInput{
			ItemID:    itemID,
			UnitPrice: line.UnitPrice,
			Brand:     line.Brand,
			Declined:  line.Declined,
		})
	}

	proposal, err := h.demands.SubmitProposal(c.Request.Context(), service.SubmitProposalInput{
		DemandID:     id,
		SupplierID:   supplierID,
		SupplierName: req.SupplierName,
		DeliveryTime: req.DeliveryTime,
		Declined:     req.Declined,
		Lines:        lines,
		Observations: req.Observations,
		Principal:    principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       proposal.ID,
		"protocol": proposal.Protocol,
		"sequence": proposal.Sequence,
	})
}

func (h *Handler) analysis(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.demandID(c)
	if !ok {
		return
	}

	_, analysis, err := h.demands.Analyze(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysisResponseFrom(analysis))
}

func (h *Handler) suggestJustification(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.demandID(c)
	if !ok {
		return
	}

	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sel, err := req.toSelection()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestion, err := h.demands.SuggestJustification(c.Request.Context(), id, sel, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"justification": suggestion})
}

func (h *Handler) exportAnalysis(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.demandID(c)
	if !ok {
		return
	}

	result, err := h.demands.ExportAnalysis(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxType, result.Content)
}

func (h *Handler) exportAwardTerm(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.demandID(c)
	if !ok {
		return
	}

	result, err := h.demands.ExportAwardTerm(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) priceHistory(c *gin.Context) {
	ref := engine.ItemRef{Description: strings.TrimSpace(c.Query("description"))}
	if raw := strings.TrimSpace(c.Query("catalog_item_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid catalog_item_id"})
			return
		}
		ref.CatalogItemID = &id
	}

	entries, summary, err := h.demands.PriceHistory(c.Request.Context(), ref)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, priceHistoryResponseFrom(entries, summary))
}

func (h *Handler) uploadAttachment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := h.demandID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxAttachmentSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}
	reader, err := file.Open()
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		h.handleError(c, err)
		return
	}

	attachment, err := h.demands.UploadAttachment(c.Request.Context(), id, file.Filename, data, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        attachment.ID,
		"file_name": attachment.FileName,
	})
}

func (h *Handler) attachmentURL(c *gin.Context) {
	id, ok := h.demandID(c)
	if !ok {
		return
	}
	attachmentID, err := uuid.Parse(c.Param("attachmentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}

	url, err := h.demands.AttachmentURL(c.Request.Context(), id, attachmentID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) demandID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid demand id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, engine.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrIntegrity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
