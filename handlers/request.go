package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medcms/helper"
	"medcms/middleware"
)

// bindJSON decodes the body into req and validates it, writing the error
// response itself when either step fails.
func bindJSON(c *gin.Context, h *helper.HTTPHelper, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.SendBadRequest(c, "Invalid request body: "+err.Error(), h.EmptyJsonMap())
		return false
	}
	if err := h.Validate.Struct(req); err != nil {
		h.SendRequestError(c, err)
		return false
	}
	return true
}

func paramID(c *gin.Context, h *helper.HTTPHelper, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.SendBadRequest(c, "Invalid "+name, h.EmptyJsonMap())
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context, h *helper.HTTPHelper) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		h.SendUnauthorizedError(c, "User not found in context", h.EmptyJsonMap())
		return uuid.Nil, false
	}
	return userID, true
}
