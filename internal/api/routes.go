package api

import (
	"net/http"

	"github.com/BILBIL17/physioconnect/internal/ai"
	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	contentService service.ContentService,
	progressService service.ProgressService,
	sessionService service.SessionService,
	chatAdapter ai.Adapter,
) {
	authHandler := NewAuthHandler(authService, sessionService)
	userHandler := NewUserHandler(userService)
	contentHandler := NewContentHandler(contentService)
	progressHandler := NewProgressHandler(progressService)
	adminHandler := NewAdminHandler(userService, contentService)
	sessionHandler := NewSessionHandler(sessionService)
	chatHandler := NewChatHandler(chatAdapter, sessionService)
	clinicsHandler := NewClinicsHandler()

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/guest", authHandler.GuestLogin)
			authGroup.POST("/admin/login", authHandler.AdminLogin)
		}

		// Read-only content is public; the dashboard shows it to every
		// visitor.
		apiV1.GET("/announcements", contentHandler.ListAnnouncements)
		apiV1.GET("/journals", contentHandler.ListJournals)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/auth/logout", authHandler.Logout)

		// --- Session / navigation state ---
		protected.GET("/session", sessionHandler.GetState)
		protected.POST("/session/navigate", sessionHandler.Navigate)
		protected.PUT("/session/ai", sessionHandler.SaveAISettings)

		// --- Signed-in user ---
		meGroup := protected.Group("/me")
		meGroup.Use(RoleMiddleware(domain.RoleUser))
		{
			meGroup.GET("", userHandler.GetMe)
			meGroup.PUT("", userHandler.UpdateMe)
			meGroup.GET("/messages", userHandler.GetMessages)
			meGroup.POST("/messages/:id/read", userHandler.MarkMessageRead)

			meGroup.POST("/plan", progressHandler.AcceptPlan)
			meGroup.POST("/plan/sessions", progressHandler.LogSession)
			meGroup.GET("/plan/history", progressHandler.GetHistory)
		}

		protected.POST("/chat", RoleMiddleware(domain.RoleUser), chatHandler.Chat)
		protected.GET("/clinics", RoleMiddleware(domain.RoleUser), clinicsHandler.ListClinics)

		// --- Back-office ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.PUT("/users/:id/premium", adminHandler.SetPremium)
			adminGroup.POST("/users/:id/messages", adminHandler.SendMessage)

			adminGroup.POST("/announcements", adminHandler.CreateAnnouncement)
			adminGroup.PUT("/announcements/:id", adminHandler.UpdateAnnouncement)
			adminGroup.DELETE("/announcements/:id", adminHandler.DeleteAnnouncement)

			adminGroup.POST("/journals", adminHandler.CreateJournal)
			adminGroup.DELETE("/journals/:id", adminHandler.DeleteJournal)
		}
	}
}
