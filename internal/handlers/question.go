package handlers

import (
	"net/http"

	"askboard/internal/middleware"
	"askboard/internal/models"
	"askboard/internal/services"
	"askboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	questions *services.QuestionService
}

func NewQuestionHandler(questions *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

type questionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type questionPatchRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

func (h *QuestionHandler) Create(c *gin.Context) {
	var req questionRequest
	if !bind(c, &req) {
		return
	}

	q, err := h.questions.Create(c.Request.Context(), middleware.CurrentActor(c), req.Title, req.Description, req.Tags)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, renderQuestion(*q))
}

// List returns a page of questions, newest first. ?page= is 1-based.
func (h *QuestionHandler) List(c *gin.Context) {
	page := utils.PageNumber(c.Query("page"))

	questions, err := h.questions.List(c.Request.Context(), page)
	if err != nil {
		RenderError(c, err)
		return
	}

	// The slice may be shared with the list cache; render into a copy.
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		out[i] = renderQuestion(q)
	}
	c.JSON(http.StatusOK, gin.H{
		"questions": out,
		"page":      page,
		"has_more":  len(questions) == services.QuestionsPerPage,
	})
}

func (h *QuestionHandler) Get(c *gin.Context) {
	q, err := h.questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderQuestion(*q))
}

func (h *QuestionHandler) Update(c *gin.Context) {
	var req questionPatchRequest
	if !bind(c, &req) {
		return
	}

	patch := services.QuestionPatch{Title: req.Title, Description: req.Description}
	if req.Tags != nil {
		patch.Tags = *req.Tags
		patch.SetTags = true
	}

	q, err := h.questions.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), patch)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderQuestion(*q))
}

func (h *QuestionHandler) Delete(c *gin.Context) {
	if err := h.questions.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
