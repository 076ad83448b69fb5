package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/spark/internal/middleware"
	"github.com/quocanhngo/spark/pkg/auth"
)

// Deps are the handlers and auth pieces the routes need
type Deps struct {
	JWT         *auth.JWTManager
	Revocations middleware.RevocationChecker

	Auth     *AuthHandler
	Profile  *ProfileHandler
	Account  *AccountHandler
	Browse   *BrowseHandler
	Match    *MatchHandler
	Report   *ReportHandler
	Presence *PresenceHandler
	WS       *WSHandler
}

// Routes registers the REST API under /api/v1 and the WebSocket endpoint at /ws
func Routes(router *gin.Engine, d Deps) {
	authRequired := middleware.AuthMiddleware(d.JWT, d.Revocations)

	api := router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", d.Auth.Register)
			authGroup.POST("/login", d.Auth.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(authRequired)
		{
			protected.POST("/auth/logout", d.Auth.Logout)

			// Profile
			protected.GET("/me", d.Profile.GetProfile)
			protected.PUT("/me", d.Profile.UpdateProfile)
			protected.PUT("/me/location", d.Profile.UpdateLocation)
			protected.POST("/me/devices", d.Profile.RegisterDevice)
			protected.POST("/me/photos", d.Profile.UploadPhoto)
			protected.DELETE("/me/photos/:id", d.Profile.DeletePhoto)
			protected.PUT("/me/photos/:id/primary", d.Profile.SetPrimaryPhoto)

			// Browse
			protected.GET("/preferences", d.Browse.GetPreference)
			protected.PUT("/preferences", d.Browse.UpdatePreference)
			protected.GET("/browse", d.Browse.Browse)
			protected.POST("/swipe", d.Browse.Swipe)

			// Matches and messages
			protected.GET("/matches", d.Match.GetMatches)
			protected.GET("/matches/:id/messages", d.Match.GetMessages)
			protected.POST("/matches/:id/messages", d.Match.SendMessage)
			protected.POST("/matches/:id/read", d.Match.MarkRead)

			// Block
			protected.GET("/block", d.Match.ListBlocked)
			protected.POST("/block", d.Match.Block)
			protected.DELETE("/block/:userId", d.Match.Unblock)

			// Moderation
			protected.POST("/report", d.Report.Report)

			// Account
			protected.GET("/account/export", d.Account.Export)
			protected.POST("/account/delete", d.Account.Delete)

			// Presence
			protected.POST("/presence", d.Presence.Presence)
			protected.GET("/metrics/online", d.Presence.Online)
		}

		admin := api.Group("/admin")
		admin.Use(authRequired, middleware.AdminOnly())
		{
			admin.GET("/reports", d.Report.ListReports)
			admin.POST("/reports/:id", d.Report.ResolveReport)
		}
	}

	// WebSocket endpoint (auth via query parameter)
	router.GET("/ws", authRequired, d.WS.HandleWebSocket)
}
