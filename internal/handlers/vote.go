package handlers

import (
	"net/http"

	"askboard/internal/middleware"
	"askboard/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type voteRequest struct {
	Value int `json:"value"`
}

// Vote casts or flips the caller's vote on a reply. Body: {"value": 1|-1}.
func (h *VoteHandler) Vote(c *gin.Context) {
	var req voteRequest
	if !bind(c, &req) {
		return
	}

	res, err := h.votes.Cast(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req.Value)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *VoteHandler) Unvote(c *gin.Context) {
	res, err := h.votes.Remove(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
