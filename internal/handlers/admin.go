package handlers

import (
	"net/http"

	"askboard/internal/middleware"
	"askboard/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the moderation operations. The admin check itself
// lives in the service.
type AdminHandler struct {
	moderation *services.ModerationService
}

func NewAdminHandler(moderation *services.ModerationService) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.moderation.ListUsers(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ToggleBan bans or unbans a user.
func (h *AdminHandler) ToggleBan(c *gin.Context) {
	banned, err := h.moderation.ToggleBan(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "is_banned": banned})
}

func (h *AdminHandler) Reports(c *gin.Context) {
	reports, err := h.moderation.ListReports(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// DeleteContent removes a question or reply by id. The response is the
// same whether anything matched.
func (h *AdminHandler) DeleteContent(c *gin.Context) {
	if err := h.moderation.DeleteContent(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
