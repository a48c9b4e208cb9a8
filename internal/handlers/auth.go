package handlers

import (
	"net/http"

	"askboard/internal/logctx"
	"askboard/internal/middleware"
	"askboard/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	accounts      *services.AccountService
	notifications *services.NotificationService
}

func NewAuthHandler(accounts *services.AccountService, notifications *services.NotificationService) *AuthHandler {
	return &AuthHandler{accounts: accounts, notifications: notifications}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req signupRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		RenderError(c, err)
		return
	}

	if err := h.startSession(c, user.ID); err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RenderError(c, err)
		return
	}

	if err := h.startSession(c, user.ID); err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		RenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the logged-in user and their unread notification count.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	unread, err := h.notifications.UnreadCount(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "unread_count": unread})
}

func (h *AuthHandler) startSession(c *gin.Context, userID string) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserKey, userID)
	if err := session.Save(); err != nil {
		logctx.From(c.Request.Context()).Error("session_save_failed", "err", err.Error())
		return err
	}
	return nil
}
