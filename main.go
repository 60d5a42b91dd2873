package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"wearmart/internal/config"
	"wearmart/internal/database"
	"wearmart/internal/handlers"
	"wearmart/internal/logger"
	"wearmart/internal/middleware"
)

func main() {
	config.Load()

	if err := logger.Init(config.AppEnv.Env); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		logger.L().Fatalw("mongodb connection failed", "error", err)
	}

	db := client.Database(config.AppEnv.DBName)
	logger.L().Infow("mongodb connected", "database", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		logger.L().Warnw("user index warning", "error", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		logger.L().Warnw("cart index warning", "error", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		logger.L().Warnw("order index warning", "error", err)
	}
	if err := database.EnsureCouponIndexes(db); err != nil {
		logger.L().Warnw("coupon index warning", "error", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		logger.L().Warnw("review index warning", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.L()))

	jwtSecret := config.AppEnv.JWTSecret

	r.POST("/auth/register", handlers.Register(db, jwtSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/login", handlers.Login(db, jwtSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/refresh", handlers.Refresh(db, jwtSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/logout", handlers.Logout(db))
	r.GET("/auth/me", middleware.UserAuth(jwtSecret), handlers.GetMe(db))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.GET("/reviews", handlers.GetReviews(db))
	r.GET("/reviews/:id", handlers.GetReview(db))
	r.GET("/coupons/check/:code", handlers.CheckCoupon(db))

	user := r.Group("/")
	user.Use(middleware.UserAuth(jwtSecret))
	{
		user.POST("/cart/add", handlers.AddToCart(db))
		user.GET("/cart", handlers.GetCart(db))
		user.PUT("/cart/update/:itemId", handlers.UpdateCartItem(db))
		user.DELETE("/cart/remove/:itemId", handlers.RemoveCartItem(db))
		user.DELETE("/cart/clear", handlers.ClearCart(db))

		user.POST("/orders", handlers.CreateOrder(db))
		user.GET("/orders", handlers.GetMyOrders(db))
		user.POST("/orders/apply-coupon", handlers.ApplyCoupon(db))
		user.GET("/orders/:id", handlers.GetOrder(db))
		user.PUT("/orders/:id/pay", handlers.PayOrder(db))

		user.POST("/reviews", handlers.CreateReview(db))
		user.PUT("/reviews/:id", handlers.UpdateReview(db))
		user.DELETE("/reviews/:id", handlers.DeleteReview(db))

		user.GET("/user/addresses", handlers.GetUserAddresses(db))
		user.POST("/user/addresses", handlers.CreateUserAddress(db))
		user.PUT("/user/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/user/addresses/:id", handlers.DeleteUserAddress(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(jwtSecret))
	{
		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.GET("/coupons", handlers.GetCoupons(db))
		admin.GET("/coupons/:id", handlers.GetCoupon(db))
		admin.POST("/coupons", handlers.CreateCoupon(db))
		admin.PUT("/coupons/:id", handlers.UpdateCoupon(db))
		admin.DELETE("/coupons/:id", handlers.DeleteCoupon(db))

		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logger.L().Fatalw("server stopped", "error", err)
	}
}
