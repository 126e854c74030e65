package routes

import (
	"github.com/gin-gonic/gin"

	"shopcore/internal/handlers"
	"shopcore/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	verifyHandler *handlers.VerifyHandler,
	userHandler *handlers.UserHandler,
	categoryHandler *handlers.CategoryHandler,
	productHandler *handlers.ProductHandler,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {

	r.GET("/healthz", healthHandler.Check)

	api := r.Group("/api")

	// ---- public
	api.POST("/register", verifyHandler.Register)
	api.POST("/resend-verification", verifyHandler.ResendVerification)
	api.GET("/verify-email/:token", verifyHandler.VerifyEmail)
	api.POST("/auth/token", authHandler.Token)
	api.POST("/auth/token/refresh", authHandler.Refresh)

	// public catalog reads
	api.GET("/categories", categoryHandler.List)
	api.GET("/categories/:slug", categoryHandler.GetBySlug)
	api.GET("/products", productHandler.List)
	api.GET("/products/:slug", productHandler.GetBySlug)

	// ---- authenticated
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(jwtSecret))

	auth.POST("/auth/logout", authHandler.Logout)
	auth.GET("/users/me", userHandler.Me)
	auth.PUT("/users/me", userHandler.UpdateMe)

	orders := auth.Group("/orders")
	{
		orders.POST("", orderHandler.Place)
		orders.GET("", orderHandler.ListMine)
		orders.GET("/:id", orderHandler.Get)
		orders.GET("/:id/invoice", orderHandler.Invoice)
		orders.GET("/:id/payments", paymentHandler.ListByOrder)
	}

	auth.POST("/payments", paymentHandler.Create)
	auth.GET("/payments/:id", paymentHandler.Get)

	// ---- staff
	admin := auth.Group("/admin", middleware.RequireStaff())
	{
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.PUT("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Delete)

		admin.POST("/categories", categoryHandler.Create)
		admin.PUT("/categories/:id", categoryHandler.Update)
		admin.DELETE("/categories/:id", categoryHandler.Delete)

		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)
		admin.POST("/products/:id/variants", productHandler.CreateVariant)
		admin.PUT("/variants/:variantID", productHandler.UpdateVariant)
		admin.DELETE("/variants/:variantID", productHandler.DeleteVariant)

		admin.GET("/orders", orderHandler.ListAll)
		admin.POST("/orders/:id/status", orderHandler.UpdateStatus)

		admin.GET("/payments", paymentHandler.List)
		admin.POST("/payments/:id/status", paymentHandler.Transition)
	}

	return r
}
