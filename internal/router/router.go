package router

import (
	"log/slog"
	"net/http"

	"askboard/internal/handlers"
	"askboard/internal/middleware"
	"askboard/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Options struct {
	DB       *gorm.DB
	Services *services.Services
	Logger   *slog.Logger

	SessionName   string
	SessionSecret string
	SecureCookies bool
}

// New builds the engine with the middleware chain and every route.
func New(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(opts.Logger))

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(opts.SessionName, store))
	r.Use(middleware.LoadUser(opts.Services.Accounts))

	RegisterRoutes(r, opts.DB, opts.Services)
	return r
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, svc *services.Services) {
	authHandler := handlers.NewAuthHandler(svc.Accounts, svc.Notifications)
	questionHandler := handlers.NewQuestionHandler(svc.Questions)
	replyHandler := handlers.NewReplyHandler(svc.Replies)
	voteHandler := handlers.NewVoteHandler(svc.Votes)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	adminHandler := handlers.NewAdminHandler(svc.Moderation)
	healthHandler := handlers.NewHealthHandler(db)

	r.NoRoute(func(c *gin.Context) {
		middleware.WriteError(c, http.StatusNotFound, "not_found", "route not found")
	})

	// Public routes
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/signup", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	r.GET("/questions", questionHandler.List)
	r.GET("/questions/:id", questionHandler.Get)
	r.GET("/questions/:id/replies", replyHandler.ListTopLevel)
	r.GET("/replies/:id/replies", replyHandler.ListChildren)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)

		authorized.POST("/questions", questionHandler.Create)
		authorized.PUT("/questions/:id", questionHandler.Update)
		authorized.DELETE("/questions/:id", questionHandler.Delete)

		authorized.POST("/questions/:id/replies", replyHandler.CreateOnQuestion)
		authorized.POST("/replies/:id/replies", replyHandler.CreateNested)
		authorized.PUT("/replies/:id", replyHandler.Update)
		authorized.DELETE("/replies/:id", replyHandler.Delete)
		authorized.POST("/replies/:id/accept", replyHandler.Accept)

		authorized.POST("/replies/:id/vote", voteHandler.Vote)
		authorized.DELETE("/replies/:id/vote", voteHandler.Unvote)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authorized.POST("/notifications/mark-all", notificationHandler.ReadAll)
		authorized.POST("/notifications/:id/read", notificationHandler.Read)

		authorized.POST("/reports", reportHandler.Create)
	}

	// Admin routes; the role check is done by the moderation service.
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired())
	{
		admin.GET("/users", adminHandler.Users)
		admin.PUT("/users/:id/ban", adminHandler.ToggleBan)
		admin.GET("/reports", adminHandler.Reports)
		admin.DELETE("/content/:id", adminHandler.DeleteContent)
	}
}
