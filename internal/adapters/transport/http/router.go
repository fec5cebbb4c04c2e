package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/okravchenko/contactbook/internal/adapters/transport/http/middleware"
	"github.com/okravchenko/contactbook/internal/app/auth"
	"github.com/okravchenko/contactbook/internal/app/contacts"
	"github.com/okravchenko/contactbook/internal/app/users"
	"github.com/okravchenko/contactbook/internal/infra/config"
)

// NewRouter assembles the full HTTP surface under /api.
func NewRouter(
	authSvc auth.Service,
	userSvc *users.Service,
	contactSvc *contacts.Service,
	db *gorm.DB,
	cfg *config.Config,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.RateLimitPerIP(50, 100, 10_000, time.Hour))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	ah := &authHandler{svc: authSvc}
	uh := &usersHandler{svc: userSvc}
	ch := &contactsHandler{svc: contactSvc}

	authn := middleware.Authenticated(authSvc)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", ah.register)
	authGroup.POST("/login", ah.login)
	authGroup.POST("/refresh-token", ah.refreshToken)
	authGroup.GET("/confirmed_email/:token", ah.confirmedEmail)
	authGroup.POST("/request_email", ah.requestEmail)
	authGroup.POST("/reset_password", ah.resetPassword)
	authGroup.GET("/confirm_reset_password/:token", ah.confirmResetPassword)
	authGroup.GET("/public", ah.public)
	authGroup.GET("/moderator", authn, middleware.RequireRoles(moderatorRoles...), ah.moderator)
	authGroup.GET("/admin", authn, middleware.RequireRoles(adminRoles...), ah.admin)

	usersGroup := api.Group("/users", authn)
	usersGroup.GET("/me", middleware.RateLimitPerIP(10, 10, 10_000, time.Minute), uh.me)
	usersGroup.PATCH("/avatar", uh.updateAvatar)

	contactsGroup := api.Group("/contacts", authn)
	contactsGroup.GET("", ch.list)
	contactsGroup.GET("/birthdays", ch.birthdays)
	contactsGroup.GET("/:id", ch.get)
	contactsGroup.POST("", ch.create)
	contactsGroup.PUT("/:id", ch.update)
	contactsGroup.DELETE("/:id", ch.remove)

	api.GET("/healthchecker", func(c *gin.Context) {
		var one int
		if err := db.WithContext(c.Request.Context()).Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
			log.Error("healthcheck failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error connecting to the database"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the contact book API!"})
	})

	return router
}
