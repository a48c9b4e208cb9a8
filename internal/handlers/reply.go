package handlers

import (
	"net/http"

	"askboard/internal/middleware"
	"askboard/internal/services"

	"github.com/gin-gonic/gin"
)

type ReplyHandler struct {
	replies *services.ReplyService
}

func NewReplyHandler(replies *services.ReplyService) *ReplyHandler {
	return &ReplyHandler{replies: replies}
}

type replyRequest struct {
	Content string `json:"content"`
}

// CreateOnQuestion adds a top-level reply to /questions/:id.
func (h *ReplyHandler) CreateOnQuestion(c *gin.Context) {
	h.create(c, services.OnQuestion(c.Param("id")))
}

// CreateNested adds a reply under /replies/:id.
func (h *ReplyHandler) CreateNested(c *gin.Context) {
	h.create(c, services.UnderReply(c.Param("id")))
}

func (h *ReplyHandler) create(c *gin.Context, target services.ReplyTarget) {
	var req replyRequest
	if !bind(c, &req) {
		return
	}

	reply, err := h.replies.Create(c.Request.Context(), middleware.CurrentActor(c), target, req.Content)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, renderReply(*reply))
}

func (h *ReplyHandler) ListTopLevel(c *gin.Context) {
	replies, err := h.replies.ListTopLevel(c.Request.Context(), c.Param("id"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": renderReplies(replies)})
}

func (h *ReplyHandler) ListChildren(c *gin.Context) {
	replies, err := h.replies.ListChildren(c.Request.Context(), c.Param("id"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": renderReplies(replies)})
}

func (h *ReplyHandler) Update(c *gin.Context) {
	var req replyRequest
	if !bind(c, &req) {
		return
	}

	reply, err := h.replies.UpdateContent(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req.Content)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderReply(*reply))
}

func (h *ReplyHandler) Delete(c *gin.Context) {
	if err := h.replies.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReplyHandler) Accept(c *gin.Context) {
	reply, err := h.replies.Accept(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderReply(*reply))
}
