package handlers

import (
	"github.com/gin-gonic/gin"

	"medcms/helper"
	"medcms/models"
	"medcms/retry"
	"medcms/services"
)

type ArticleHandler struct {
	articleService services.ArticleService
	retryConfig    *retry.Config
	Helper         *helper.HTTPHelper
}

func NewArticleHandler(articleService services.ArticleService, retryConfig *retry.Config, h *helper.HTTPHelper) *ArticleHandler {
	if retryConfig == nil {
		retryConfig = retry.DefaultConfig()
	}
	return &ArticleHandler{
		articleService: articleService,
		retryConfig:    retryConfig,
		Helper:         h,
	}
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	userID, ok := currentUser(c, h.Helper)
	if !ok {
		return
	}

	var req models.CreateArticleRequest
	if !bindJSON(c, h.Helper, &req) {
		return
	}

	article, err := h.articleService.CreateArticle(c.Request.Context(), req, userID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Article created successfully", article)
}

func (h *ArticleHandler) GetArticles(c *gin.Context) {
	var params models.ArticleListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query: "+err.Error(), h.Helper.EmptyJsonMap())
		return
	}
	if params.Skip < 0 {
		params.Skip = 0
	}
	if params.Take <= 0 || params.Take > 100 {
		params.Take = 20
	}

	articles, total, err := h.articleService.GetArticles(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", map[string]interface{}{
		"articles":   articles,
		"pagination": h.Helper.GeneratePaging(c, params.Skip, params.Take, total),
	})
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	article, err := h.articleService.GetArticle(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", article)
}

// UpdateArticle retries the whole update when a concurrent writer took the
// next version number first.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	userID, ok := currentUser(c, h.Helper)
	if !ok {
		return
	}
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var req models.UpdateArticleRequest
	if !bindJSON(c, h.Helper, &req) {
		return
	}

	var article *models.Article
	err := retry.DoIfRetryable(c.Request.Context(), h.retryConfig, func() error {
		var err error
		article, err = h.articleService.UpdateArticle(c.Request.Context(), id, req, userID)
		return err
	})
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article updated successfully", article)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	userID, ok := currentUser(c, h.Helper)
	if !ok {
		return
	}
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var reason *string
	if r := c.Query("reason"); r != "" {
		reason = &r
	}

	article, err := h.articleService.DeleteArticle(c.Request.Context(), id, userID, reason)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Article deleted successfully", article)
}

func (h *ArticleHandler) RestoreVersion(c *gin.Context) {
	userID, ok := currentUser(c, h.Helper)
	if !ok {
		return
	}
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}
	versionID, ok := paramID(c, h.Helper, "version_id")
	if !ok {
		return
	}

	var req models.RestoreVersionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, h.Helper, &req) {
		return
	}

	article, err := h.articleService.RestoreVersion(c.Request.Context(), id, versionID, userID, req.Reason)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Version restored successfully", article)
}

func (h *ArticleHandler) GetArticleVersions(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	versions, err := h.articleService.GetArticleVersions(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", versions)
}

func (h *ArticleHandler) GetArticleCategories(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	h.Helper.SendSuccess(c, "Success", h.articleService.GetArticleCategories(c.Request.Context(), id))
}

func (h *ArticleHandler) GetAttachments(c *gin.Context) {
	versionID, ok := paramID(c, h.Helper, "version_id")
	if !ok {
		return
	}

	attachments, err := h.articleService.GetAttachments(c.Request.Context(), versionID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Success", attachments)
}

func (h *ArticleHandler) AddAttachment(c *gin.Context) {
	userID, ok := currentUser(c, h.Helper)
	if !ok {
		return
	}
	versionID, ok := paramID(c, h.Helper, "version_id")
	if !ok {
		return
	}

	var req models.AddAttachmentRequest
	if !bindJSON(c, h.Helper, &req) {
		return
	}

	attachment, err := h.articleService.AddAttachment(c.Request.Context(), versionID, req, userID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Attachment added successfully", attachment)
}

func (h *ArticleHandler) RemoveAttachment(c *gin.Context) {
	userID, ok := currentUser(c, h.Helper)
	if !ok {
		return
	}
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	removed, err := h.articleService.RemoveAttachment(c.Request.Context(), id, userID)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Attachment removed successfully", map[string]interface{}{"removed": removed})
}
