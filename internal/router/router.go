package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/photoshare/backend/internal/handler"    // handlers implement the endpoint logic
	"github.com/photoshare/backend/internal/middleware" // middleware for JWT authentication and role enforcement
	"github.com/photoshare/backend/internal/model"
)

// Handlers bundles every handler group the router wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Images   *handler.ImageHandler
	Ratings  *handler.RatingHandler
	Comments *handler.CommentHandler
	Admin    *handler.AdminHandler
}

// RegisterRoutes registers the full API surface on the provided Echo
// instance.  Unauthenticated operations live under /api/auth; everything
// else requires a Bearer access token.  cache, when non-nil, is applied to
// the read-heavy image listing endpoints.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Routes that do not require an existing session.
	auth := e.Group("/api/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	// The refresh token is presented as a bearer, matching the access-token
	// convention, so this is a GET rather than a POST with a body.
	auth.GET("/refresh_token", h.Auth.RefreshToken)
	auth.GET("/confirmed_email/:token", h.Auth.ConfirmedEmail)
	auth.POST("/request_email", h.Auth.RequestEmail)

	// Everything below requires a valid access token.  The middleware
	// rejects missing/invalid bearers with 401 and restricts roles to the
	// known set; handlers load the full user record for ownership and ban
	// checks.
	api := e.Group("/api")
	api.Use(middleware.JWTAuth(jwtSecret))
	api.Use(middleware.RequireRole(model.RoleUser, model.RoleModerator, model.RoleAdmin))

	// Users.
	api.GET("/users/me", h.Users.Me)
	api.PUT("/users/me", h.Users.UpdateMe)
	api.PATCH("/users/avatar", h.Users.UpdateAvatar)
	api.GET("/users/:username", h.Users.GetByUsername)

	// Images.
	api.POST("/images", h.Images.Upload)
	if cache != nil {
		api.GET("/images", h.Images.List, cache)
	} else {
		api.GET("/images", h.Images.List)
	}
	api.GET("/images/:id", h.Images.Get)
	api.PUT("/images/:id", h.Images.Update)
	api.DELETE("/images/:id", h.Images.Delete)
	api.POST("/images/transform/grayscale/:id", h.Images.Grayscale)
	api.POST("/images/transform/sepia/:id", h.Images.Sepia)
	api.POST("/images/transform/crop/:id", h.Images.Crop)
	api.POST("/images/transform/round_corners/:id", h.Images.RoundCorners)
	api.GET("/images/:id/qr", h.Images.QRCode)
	api.DELETE("/images/:id/qr", h.Images.DeleteQRCode)

	// Ratings.
	api.POST("/ratings", h.Ratings.Rate)
	api.GET("/ratings/image/:id", h.Ratings.ListByImage)
	api.GET("/ratings/image/:id/average", h.Ratings.Average)
	api.DELETE("/ratings/:imageID/:userID", h.Ratings.Delete)

	// Comments.
	api.POST("/comments", h.Comments.Post)
	api.GET("/comments/:id", h.Comments.Get)
	api.GET("/comments/image/:id", h.Comments.ByImage)
	api.GET("/comments/user/:id", h.Comments.ByUser)
	api.PUT("/comments/:id", h.Comments.Change)
	api.DELETE("/comments/:id", h.Comments.Delete)

	// Admin endpoints are further restricted to the ADMIN role up front;
	// the handlers still verify against the database record.
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/ban/:id", h.Admin.Ban)
	admin.POST("/unban/:id", h.Admin.Unban)
	admin.POST("/role/:id", h.Admin.ChangeRole)
}
