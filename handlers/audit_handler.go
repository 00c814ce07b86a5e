package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medcms/helper"
	"medcms/models"
	"medcms/services"
)

type AuditHandler struct {
	auditService services.AuditService
	Helper       *helper.HTTPHelper
}

func NewAuditHandler(auditService services.AuditService, h *helper.HTTPHelper) *AuditHandler {
	return &AuditHandler{auditService: auditService, Helper: h}
}

func (h *AuditHandler) GetChangelogs(c *gin.Context) {
	var params models.AuditListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query: "+err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	filter := models.AuditFilter{EntityType: params.EntityType}
	if params.UserID != "" {
		userID, err := uuid.Parse(params.UserID)
		if err != nil {
			h.Helper.SendBadRequest(c, "Invalid user_id", h.Helper.EmptyJsonMap())
			return
		}
		filter.UserID = &userID
	}
	if params.Skip < 0 {
		params.Skip = 0
	}
	if params.Take <= 0 || params.Take > 200 {
		params.Take = 50
	}

	entries, err := h.auditService.FindAll(c.Request.Context(), filter, models.Pagination{Skip: params.Skip, Take: params.Take})
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", entries)
}

func (h *AuditHandler) GetEntityChangelog(c *gin.Context) {
	entityID, ok := paramID(c, h.Helper, "entity_id")
	if !ok {
		return
	}

	entries, err := h.auditService.FindByEntity(c.Request.Context(), c.Param("entity_type"), entityID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", entries)
}
