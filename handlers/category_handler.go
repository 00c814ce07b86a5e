package handlers

import (
	"github.com/gin-gonic/gin"

	"medcms/helper"
	"medcms/models"
	"medcms/services"
)

type CategoryHandler struct {
	categoryService services.CategoryService
	Helper          *helper.HTTPHelper
}

func NewCategoryHandler(categoryService services.CategoryService, h *helper.HTTPHelper) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, Helper: h}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, ok := currentUser(c, h.Helper)
	if !ok {
		return
	}

	var req models.CreateCategoryRequest
	if !bindJSON(c, h.Helper, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), req, userID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Category created successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, ok := currentUser(c, h.Helper)
	if !ok {
		return
	}
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if !bindJSON(c, h.Helper, &req) {
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, req, userID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Category updated successfully", category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, ok := currentUser(c, h.Helper)
	if !ok {
		return
	}
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.DeleteCategory(c.Request.Context(), id, userID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Category deleted successfully", category)
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.GetCategories(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", category)
}

func (h *CategoryHandler) GetArticlesByCategory(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	articles, err := h.categoryService.GetArticlesByCategory(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", articles)
}
