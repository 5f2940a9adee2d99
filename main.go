package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/simplexsales/backend/config"
	"github.com/simplexsales/backend/controllers"
	"github.com/simplexsales/backend/database"
	"github.com/simplexsales/backend/middleware"
	"github.com/simplexsales/backend/notify"
	"github.com/simplexsales/backend/repository"
	"github.com/simplexsales/backend/services"
	"github.com/simplexsales/backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal(err)
	}

	// seeding admin user
	if err := utils.SeedAdminUser(ctx, db.Collection("users"), cfg); err != nil {
		log.Fatal(err)
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	notifier := notify.New(cfg)
	v := utils.NewImageValidator(cfg)

	users := repository.NewUserRepository(db)
	products := repository.NewProductRepository(db)
	quotations := repository.NewQuotationRepository(db)

	authService := services.NewAuthService(users, tokens, notifier, cfg.PublicBaseURL)
	productService := services.NewProductService(products)
	quotationService := services.NewQuotationService(quotations, products, users, notifier)

	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register(authService))
		auth.POST("/login", controllers.Login(authService))
		auth.POST("/login/:role", controllers.LoginWithRole(authService))
		auth.POST("/refresh", controllers.Refresh(authService))
		auth.POST("/forgot-password", controllers.ForgotPassword(authService))
		auth.POST("/reset-password/:resetToken", controllers.ResetPassword(authService))
		auth.GET("/verify-email/:verificationToken", controllers.VerifyEmail(authService))
		auth.POST("/verify-email/:verificationToken", controllers.VerifyEmail(authService))

		protected := auth.Group("")
		protected.Use(middleware.AuthRequired(tokens))
		{
			protected.POST("/logout", controllers.Logout(authService))
			protected.POST("/resend-verification", controllers.ResendVerification(authService))
			protected.POST("/change-password", controllers.ChangePassword(authService))
			protected.GET("/me", controllers.GetCurrentUser(authService))
		}
	}

	r.GET("/products", controllers.GetProducts(productService))
	r.GET("/products/:productId", controllers.GetProduct(productService))
	r.POST("/products/:productId/quotations",
		middleware.AuthRequired(tokens),
		controllers.CreateQuotationRequest(quotationService))

	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(tokens), middleware.AdminOnly())
	{
		admin.GET("/users", controllers.GetUsers(authService))

		admin.GET("/quotations", controllers.GetQuotationRequests(quotationService))
		admin.POST("/quotations/:qrId/respond", controllers.RespondToQuotationRequest(quotationService))

		admin.GET("/products", controllers.GetProducts(productService))
		admin.POST("/products", controllers.AddProduct(productService))
		admin.PUT("/products/:productId", controllers.UpdateProduct(productService))
		admin.DELETE("/products/:productId", controllers.DeleteProduct(productService))
		admin.POST("/products/:productId/images", controllers.UploadProductImages(productService, cfg, v))
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
