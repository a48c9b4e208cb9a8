package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"askboard/internal/logctx"
	"askboard/internal/middleware"
	"askboard/internal/models"
	"askboard/internal/services"
	"askboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// RenderError maps a service error to its HTTP status and writes the error
// body. Internal errors are logged and never leak details.
func RenderError(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, "internal", "internal error"
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, services.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "forbidden"
	case errors.Is(err, services.ErrConflict):
		status, code, message = http.StatusConflict, "conflict", "conflict"
	case errors.Is(err, services.ErrInvalidArgument):
		status, code, message = http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, services.ErrUnauthenticated):
		status, code, message = http.StatusUnauthorized, "unauthenticated", "login required"
	}

	if status == http.StatusInternalServerError {
		logctx.From(c.Request.Context()).Error("request_failed",
			slog.String("path", c.FullPath()),
			slog.String("err", err.Error()),
		)
	} else if m := services.PublicMessage(err); m != "" {
		message = m
	}

	middleware.WriteError(c, status, code, message)
}

// bind decodes the JSON body into dst, answering 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.WriteError(c, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return false
	}
	return true
}

func renderQuestion(q models.Question) models.Question {
	q.DescriptionHTML = utils.RenderMarkdown(q.Description)
	return q
}

func renderReplies(replies []models.Reply) []models.Reply {
	out := make([]models.Reply, len(replies))
	for i, r := range replies {
		r.ContentHTML = utils.RenderMarkdown(r.Content)
		out[i] = r
	}
	return out
}

func renderReply(r models.Reply) models.Reply {
	r.ContentHTML = utils.RenderMarkdown(r.Content)
	return r
}
