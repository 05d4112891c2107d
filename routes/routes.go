package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"duopet-backend/controllers"
	"duopet-backend/middleware"
	"duopet-backend/models"
)

// Handlers bundles everything the router needs.
type Handlers struct {
	Gate    gin.HandlerFunc
	Metrics http.Handler

	Auth   *controllers.AuthController
	Users  *controllers.UserController
	Admin  *controllers.AdminController
	Social *controllers.SocialController
	Sms    *controllers.SmsController
}

// SetupRoutes mounts all application routes behind the request gate.
func SetupRoutes(r *gin.Engine, h Handlers) {
	if h.Gate != nil {
		r.Use(h.Gate)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	// Session lifecycle
	r.POST("/login", h.Auth.Login)
	r.POST("/logout", h.Auth.Logout)
	r.POST("/reissue", h.Auth.Reissue)
	r.GET("/session/check", h.Auth.SessionCheck)

	users := r.Group("/users")
	{
		users.POST("/signup", h.Users.Signup)
		users.GET("/me", h.Users.CurrentUser)
	}

	sms := r.Group("/sms")
	{
		sms.POST("/send", h.Sms.Send)
		sms.POST("/verify", h.Sms.Verify)
	}

	// Social login (authorization code flow)
	r.GET("/oauth2/authorization/:provider", h.Social.Authorize)
	r.GET("/login/oauth2/code/:provider", h.Social.Callback)

	admin := r.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/users/:id/suspend", h.Admin.Suspend)
		admin.POST("/users/:id/unsuspend", h.Admin.Unsuspend)
		admin.GET("/login-stats", h.Admin.LoginStats)
	}
}
